package sessionserver

import (
	"net"
	"testing"
	"time"

	"github.com/run-in-terminal/rit-host/internal/auth"
	"github.com/run-in-terminal/rit-host/internal/ptyproc"
	"github.com/run-in-terminal/rit-host/internal/wireproto"
)

func TestServeClientRejectsFailedHandshake(t *testing.T) {
	s := &Server{
		name:    "t",
		clients: make(map[net.Conn]struct{}),
		stop:    make(chan struct{}),
	}
	s.authkey, _ = auth.GenerateKey()

	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	done := make(chan struct{})
	go func() {
		s.serveClient(serverConn)
		close(done)
	}()

	// Wrong key: client never completes the handshake correctly.
	wrongKey, _ := auth.GenerateKey()
	_ = auth.ClientHandshake(clientConn, wrongKey[:])

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("serveClient did not return after a failed handshake")
	}

	s.mu.Lock()
	n := len(s.clients)
	s.mu.Unlock()
	if n != 0 {
		t.Errorf("client set has %d entries, want 0 after a failed handshake", n)
	}
}

func TestServeClientSendsReadyThenHandlesPing(t *testing.T) {
	s := &Server{
		name:    "t",
		shell:   "/bin/bash",
		clients: make(map[net.Conn]struct{}),
		stop:    make(chan struct{}),
	}
	s.authkey, _ = auth.GenerateKey()
	s.pty = &stubPTY{}

	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	go s.serveClient(serverConn)

	if err := auth.ClientHandshake(clientConn, s.authkey[:]); err != nil {
		t.Fatalf("ClientHandshake failed: %v", err)
	}

	var ready wireproto.Event
	if err := wireproto.DecodeFrame(clientConn, &ready); err != nil {
		t.Fatalf("decoding ready event failed: %v", err)
	}
	if ready.Type != wireproto.TypeReady || ready.Session != "t" {
		t.Errorf("ready event = %+v", ready)
	}

	if err := wireproto.WriteFrame(clientConn, wireproto.Command{Cmd: wireproto.CmdPing}); err != nil {
		t.Fatalf("write ping failed: %v", err)
	}

	var pong wireproto.Event
	if err := wireproto.DecodeFrame(clientConn, &pong); err != nil {
		t.Fatalf("decoding pong failed: %v", err)
	}
	if pong.Type != wireproto.TypePong {
		t.Errorf("pong event = %+v", pong)
	}
}

func TestCloseNotifiesConnectedClients(t *testing.T) {
	s := &Server{
		name:    "t",
		shell:   "/bin/bash",
		clients: make(map[net.Conn]struct{}),
		stop:    make(chan struct{}),
	}
	s.authkey, _ = auth.GenerateKey()
	s.pty = &stubPTY{}

	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()

	go s.serveClient(serverConn)

	if err := auth.ClientHandshake(clientConn, s.authkey[:]); err != nil {
		t.Fatalf("ClientHandshake failed: %v", err)
	}
	var ready wireproto.Event
	if err := wireproto.DecodeFrame(clientConn, &ready); err != nil {
		t.Fatalf("decoding ready event failed: %v", err)
	}

	// Wait for the client to be registered before closing, so the
	// close notification isn't racing addClient.
	for {
		s.mu.Lock()
		n := len(s.clients)
		s.mu.Unlock()
		if n == 1 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()

	var closeEvent wireproto.Event
	if err := wireproto.DecodeFrame(clientConn, &closeEvent); err != nil {
		t.Fatalf("decoding close notification failed: %v", err)
	}
	if closeEvent.Type != wireproto.TypeExit {
		t.Errorf("close notification type = %q, want %q", closeEvent.Type, wireproto.TypeExit)
	}

	if _, err := clientConn.Read(make([]byte, 1)); err == nil {
		t.Error("expected client connection to be closed after Close(), read succeeded")
	}

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Close did not return")
	}
}

// stubPTY satisfies ptyproc.PTY for tests that don't need a real shell.
type stubPTY struct{}

func (stubPTY) Platform() ptyproc.Platform        { return ptyproc.PlatformPosixPTY }
func (stubPTY) ReadChunk(buf []byte) (int, error) { return 0, nil }
func (stubPTY) Write(data []byte) (int, error)    { return len(data), nil }
func (stubPTY) Resize(cols, rows uint16) error    { return nil }
func (stubPTY) PollExitCode() (int, bool)         { return 0, false }
func (stubPTY) Close() error                      { return nil }
