//go:build !windows

package hostbridge

import (
	"bytes"
	"testing"
	"time"

	"github.com/run-in-terminal/rit-host/internal/config"
	"github.com/run-in-terminal/rit-host/internal/paths"
	"github.com/run-in-terminal/rit-host/internal/rendezvous"
	"github.com/run-in-terminal/rit-host/internal/sessionserver"
	"github.com/run-in-terminal/rit-host/internal/wireproto"
)

// TestRunEOFDetachesWithoutClosingSessionDaemon guards the spec.md
// §4.4/§8 invariant that a bridge hitting EOF on the extension's
// stdin only detaches locally; the session daemon it was attached to
// must still be running (and reachable by name) afterward, so a later
// "open" can re-attach to the same shell.
func TestRunEOFDetachesWithoutClosingSessionDaemon(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", t.TempDir())
	if err := paths.EnsureDirs(); err != nil {
		t.Fatalf("EnsureDirs failed: %v", err)
	}

	const name = "eof-detach-test"
	srv := sessionserver.New(sessionserver.Options{Name: name, Shell: "/bin/sh", Cols: 80, Rows: 24})
	runDone := make(chan struct{})
	go func() {
		_ = srv.Run()
		close(runDone)
	}()
	defer func() {
		srv.Close()
		<-runDone
	}()

	waitForCoordinates(t, name)

	var in, out bytes.Buffer
	if err := wireproto.WriteFrame(&in, wireproto.ExtMessage{Type: wireproto.TypeOpen, Session: name}); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}

	// in is now exhausted once the open message is consumed, so Run
	// observes an immediate EOF and returns via its deferred cleanup.
	New(&in, &out, config.Default()).Run()

	info, ok := rendezvous.ReadInfo(name)
	if !ok {
		t.Fatal("session daemon's coordinates were removed after a bridge EOF; EOF must not close the daemon")
	}

	conn, err := rendezvous.TryConnect(info)
	if err != nil {
		t.Fatalf("session daemon unreachable after bridge EOF: %v", err)
	}
	conn.Close()
}

func waitForCoordinates(t *testing.T, name string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := rendezvous.ReadInfo(name); ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("session daemon never published coordinates")
}
