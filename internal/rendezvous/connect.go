package rendezvous

import (
	"fmt"
	"net"
	"time"

	"github.com/run-in-terminal/rit-host/internal/auth"
)

// dialTimeout bounds a single connection attempt to a candidate
// session daemon; EnsureSession's own deadline governs overall retry
// time, this just keeps one dead daemon from stalling a poll tick.
const dialTimeout = 500 * time.Millisecond

// TryConnect dials the daemon described by c and completes the
// authenticated handshake, mirroring the Python original's
// try_connect but performing the HMAC challenge-response explicitly
// instead of relying on multiprocessing.connection's built-in authkey
// check. A non-nil error means the daemon is unreachable or the
// coordinates are stale; the caller should treat that as "no session"
// and fall through to spawning, exactly as try_connect returning None
// does.
func TryConnect(c *Coordinates) (net.Conn, error) {
	authkey, err := c.DecodeAuthKey()
	if err != nil {
		return nil, err
	}

	addr := fmt.Sprintf("%s:%d", c.Host, c.Port)
	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("rendezvous: dial %s: %w", addr, err)
	}

	if err := auth.ClientHandshake(conn, authkey); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rendezvous: handshake with %s: %w", addr, err)
	}
	return conn, nil
}
