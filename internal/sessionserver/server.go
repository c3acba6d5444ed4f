// Package sessionserver implements the daemon side of a single named
// session: it owns one PTY, listens on an ephemeral loopback port,
// authenticates and serves any number of concurrent bridge
// connections, and publishes/retracts its rendezvous coordinates as it
// starts and stops.
//
// It is grounded on the Python original's SessionServer class
// (native-host/run_in_terminal.py) and on the teacher's
// internal/daemon.Daemon for the Go idiom of a stop-flag +
// mutex-guarded client set + accept loop that this module generalizes
// the Python's threading.Event/threading.Lock/Listener.accept into.
package sessionserver

import (
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/run-in-terminal/rit-host/internal/auth"
	"github.com/run-in-terminal/rit-host/internal/logging"
	"github.com/run-in-terminal/rit-host/internal/ptyproc"
	"github.com/run-in-terminal/rit-host/internal/rendezvous"
	"github.com/run-in-terminal/rit-host/internal/wireproto"
)

var log = logging.Component("sessionserver")

// Options configures a new Server.
type Options struct {
	Name  string
	Shell string
	Cols  uint16
	Rows  uint16
}

// Server is a single session daemon: one PTY, one listener, any number
// of authenticated client connections.
type Server struct {
	name  string
	shell string
	cols  uint16
	rows  uint16

	pty      ptyproc.PTY
	authkey  [auth.KeyLen]byte
	listener net.Listener

	mu      sync.Mutex
	clients map[net.Conn]struct{}
	closed  bool
	stop    chan struct{}
}

// New constructs a Server; call Run to start it.
func New(opts Options) *Server {
	return &Server{
		name:    opts.Name,
		shell:   opts.Shell,
		cols:    opts.Cols,
		rows:    opts.Rows,
		clients: make(map[net.Conn]struct{}),
		stop:    make(chan struct{}),
	}
}

// Run starts the PTY, publishes this session's coordinates, and
// serves connections until Close is called or the PTY exits. It
// blocks until the server has fully shut down.
func (s *Server) Run() error {
	authkey, err := auth.GenerateKey()
	if err != nil {
		return fmt.Errorf("sessionserver: generate authkey: %w", err)
	}
	s.authkey = authkey

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("sessionserver: listen: %w", err)
	}
	s.listener = ln

	p, err := ptyproc.Spawn(ptyproc.Options{Shell: s.shell, Cols: s.cols, Rows: s.rows})
	if err != nil {
		_ = ln.Close()
		return fmt.Errorf("sessionserver: spawn pty: %w", err)
	}
	s.pty = p

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		_ = ln.Close()
		_ = p.Close()
		return fmt.Errorf("sessionserver: parse listener address: %w", err)
	}
	port := 0
	fmt.Sscanf(portStr, "%d", &port)

	coords := rendezvous.Coordinates{
		Name:       s.name,
		PID:        os.Getpid(),
		Host:       host,
		Port:       port,
		AuthKeyB64: rendezvous.EncodeAuthKey(s.authkey[:]),
		StartedAt:  float64(time.Now().Unix()),
	}
	if err := rendezvous.WriteInfo(coords); err != nil {
		_ = ln.Close()
		_ = p.Close()
		return fmt.Errorf("sessionserver: publish coordinates: %w", err)
	}

	log.Info("session started", "name", s.name, "platform", p.Platform(), "addr", ln.Addr().String())

	go s.ptyReaderLoop()
	s.acceptLoop()
	s.Close()
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.stop:
				return
			default:
				continue
			}
		}
		select {
		case <-s.stop:
			_ = conn.Close()
			return
		default:
		}
		go s.serveClient(conn)
	}
}

func (s *Server) addClient(c net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c] = struct{}{}
}

func (s *Server) removeClient(c net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, c)
}

// broadcast sends an event to every connected client, closing and
// pruning any connection that fails to accept it, matching the Python
// original's broadcast.
func (s *Server) broadcast(send func(net.Conn) error) {
	s.mu.Lock()
	targets := make([]net.Conn, 0, len(s.clients))
	for c := range s.clients {
		targets = append(targets, c)
	}
	s.mu.Unlock()

	for _, c := range targets {
		if err := send(c); err != nil {
			_ = c.Close()
			s.removeClient(c)
		}
	}
}

// Close is idempotent: it stops accepting, kicks every client, tears
// down the listener and PTY, and retracts the coordinates file. A
// still-blocked Accept is unblocked with a self-connect, matching the
// Python original's trick of connecting to its own listener from
// close().
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	close(s.stop)
	s.closeClients()

	if s.listener != nil {
		addr := s.listener.Addr().String()
		if c, err := net.DialTimeout("tcp", addr, 500*time.Millisecond); err == nil {
			_ = c.Close()
		}
		_ = s.listener.Close()
	}

	if s.pty != nil {
		_ = s.pty.Close()
	}

	rendezvous.RemoveInfo(s.name)
	log.Info("session closed", "name", s.name)
}

// closeClients notifies every connected client that the session is
// going away, then severs its connection. It follows the Python
// original's close() loop (send, then close each connection), but the
// notification it sends is an exit event with code 0 rather than a
// {"cmd": "close"} record.
// Without this, a still-connected bridge only learns the daemon is
// gone once its read times out or the process exits, which can take
// the full SIGTERM grace period.
func (s *Server) closeClients() {
	s.mu.Lock()
	targets := make([]net.Conn, 0, len(s.clients))
	for c := range s.clients {
		targets = append(targets, c)
	}
	s.clients = make(map[net.Conn]struct{})
	s.mu.Unlock()

	closeEvent := wireproto.Event{Type: wireproto.TypeExit, Code: wireproto.IntPtr(0)}
	for _, c := range targets {
		_ = wireproto.WriteFrame(c, closeEvent)
		_ = c.Close()
	}
}
