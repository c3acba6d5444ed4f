package rendezvous

import (
	"os"
	"testing"

	"github.com/run-in-terminal/rit-host/internal/paths"
)

func setupStateDir(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	if err := paths.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}
}

func TestWriteReadRemoveInfoRoundTrip(t *testing.T) {
	setupStateDir(t)

	want := Coordinates{
		Name:       "test-session",
		PID:        1234,
		Host:       "127.0.0.1",
		Port:       54321,
		AuthKeyB64: EncodeAuthKey([]byte("0123456789abcdef0123456789abcdef")),
		StartedAt:  1700000000,
	}
	if err := WriteInfo(want); err != nil {
		t.Fatalf("WriteInfo failed: %v", err)
	}

	got, ok := ReadInfo(want.Name)
	if !ok {
		t.Fatal("ReadInfo reported the freshly written session as absent")
	}
	if *got != want {
		t.Errorf("got %+v, want %+v", *got, want)
	}

	RemoveInfo(want.Name)
	if _, ok := ReadInfo(want.Name); ok {
		t.Error("ReadInfo still found the session after RemoveInfo")
	}
}

func TestReadInfoMissingFileIsNotAnError(t *testing.T) {
	setupStateDir(t)

	if _, ok := ReadInfo("never-existed"); ok {
		t.Error("ReadInfo should report a missing session as absent, not found")
	}
}

func TestReadInfoMalformedFileIsTreatedAsAbsent(t *testing.T) {
	setupStateDir(t)

	if err := WriteInfo(Coordinates{Name: "broken"}); err != nil {
		t.Fatalf("WriteInfo failed: %v", err)
	}
	// Corrupt it after the fact.
	if err := os.WriteFile(paths.CoordinatesPath("broken"), []byte("{not json"), 0o600); err != nil {
		t.Fatalf("corrupt coordinates file: %v", err)
	}

	if _, ok := ReadInfo("broken"); ok {
		t.Error("ReadInfo should treat malformed JSON as absent")
	}
}

func TestEncodeDecodeAuthKeyRoundTrip(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")
	c := Coordinates{AuthKeyB64: EncodeAuthKey(key)}

	got, err := c.DecodeAuthKey()
	if err != nil {
		t.Fatalf("DecodeAuthKey failed: %v", err)
	}
	if string(got) != string(key) {
		t.Errorf("got %q, want %q", got, key)
	}
}
