package hostbridge

import (
	"encoding/base64"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/run-in-terminal/rit-host/internal/config"
	"github.com/run-in-terminal/rit-host/internal/rendezvous"
	"github.com/run-in-terminal/rit-host/internal/wireproto"
)

// DaemonClient is the host-side handle to a session daemon connection,
// grounded on the Python original's DaemonClient class. It owns the
// reader goroutine that forwards daemon events to the extension.
type DaemonClient struct {
	name string
	send func(wireproto.BridgeMessage)
	cfg  config.Config

	mu       sync.Mutex
	conn     net.Conn
	coords   *rendezvous.Coordinates
	closed   bool
	closedCh chan struct{}
}

// NewDaemonClient constructs a client for the named session; send is
// called (from the reader goroutine) for every event the daemon
// forwards back to the extension. cfg supplies the rendezvous timeout
// and spawn-lock setting.
func NewDaemonClient(name string, send func(wireproto.BridgeMessage), cfg config.Config) *DaemonClient {
	return &DaemonClient{name: name, send: send, cfg: cfg, closedCh: make(chan struct{})}
}

// ConnectOrSpawn resolves the named session via rendezvous.EnsureSession
// and starts the reader goroutine.
func (c *DaemonClient) ConnectOrSpawn(shell string, cols, rows int) error {
	conn, coords, err := rendezvous.EnsureSession(c.name, rendezvous.EnsureOptions{
		Shell:            shell,
		Cols:             cols,
		Rows:             rows,
		Timeout:          c.rendezvousTimeout(),
		SpawnLockEnabled: c.cfg.SpawnLockEnabled(),
	})
	if err != nil {
		return err
	}
	c.conn = conn
	c.coords = coords

	go c.readerLoop()
	return nil
}

func (c *DaemonClient) rendezvousTimeout() time.Duration {
	d, err := time.ParseDuration(c.cfg.RendezvousTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// readerLoop receives events from the daemon and forwards them to the
// extension, matching the Python original's DaemonClient._reader_loop.
// A "data" event's payload is already base64 and extension-ready, so
// it is passed through without decode/re-encode.
func (c *DaemonClient) readerLoop() {
	defer func() {
		log.Debug("reader thread terminated", "name", c.name)
		c.Detach()
	}()

	for {
		var ev wireproto.Event
		if err := wireproto.DecodeFrame(c.conn, &ev); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				log.Debug("reader thread error", "name", c.name, "err", err)
			}
			return
		}

		c.send(wireproto.BridgeMessage{
			Type:     ev.Type,
			Session:  c.name,
			Platform: ev.Platform,
			Shell:    ev.Shell,
			DataB64:  ev.DataB64,
			Code:     ev.Code,
		})

		if ev.Type == wireproto.TypeExit {
			return
		}
	}
}

// Stdin forwards raw input bytes to the daemon.
func (c *DaemonClient) Stdin(data []byte) {
	c.writeCommand(wireproto.Command{
		Cmd:     wireproto.CmdStdin,
		DataB64: base64.StdEncoding.EncodeToString(data),
	})
}

// Resize requests a terminal resize in the daemon.
func (c *DaemonClient) Resize(cols, rows int) {
	c.writeCommand(wireproto.Command{Cmd: wireproto.CmdResize, Cols: cols, Rows: rows})
}

// Ping pings the daemon.
func (c *DaemonClient) Ping() {
	c.writeCommand(wireproto.Command{Cmd: wireproto.CmdPing})
}

func (c *DaemonClient) writeCommand(cmd wireproto.Command) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return
	}
	_ = wireproto.WriteFrame(conn, cmd)
}

// Close sends a close command best-effort and tears down the
// connection, idempotently. This tells the session daemon to shut
// down entirely, so it must only be used for an explicit "close"
// message from the extension, never for the bridge's own EOF — a
// bridge disconnecting does not end the session, per spec.md §4.4 and
// §8 ("a bridge's EOF ... does not terminate the session daemon").
// Use Detach for that case instead.
func (c *DaemonClient) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	conn := c.conn
	close(c.closedCh)
	c.mu.Unlock()

	if conn == nil {
		return
	}
	_ = wireproto.WriteFrame(conn, wireproto.Command{Cmd: wireproto.CmdClose})
	_ = conn.Close()
	log.Info("daemon client closed", "name", c.name)
}

// Detach tears down this bridge's local connection to the daemon
// without sending it a close command, leaving the session daemon (and
// the shell it owns) running for a later "open" to re-attach to.
// Idempotent, and safe to call alongside Close (only the first call
// of either does anything).
func (c *DaemonClient) Detach() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	conn := c.conn
	close(c.closedCh)
	c.mu.Unlock()

	if conn == nil {
		return
	}
	_ = conn.Close()
	log.Info("daemon client detached", "name", c.name)
}
