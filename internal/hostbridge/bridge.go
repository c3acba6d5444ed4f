// Package hostbridge implements the native-messaging-facing half of
// the host process: it speaks wireproto framing over stdin/stdout to
// the browser extension, and for each "open" message hands off to a
// DaemonClient that owns the underlying session connection.
//
// Grounded on the Python original's host_main/DaemonClient
// (native-host/run_in_terminal.py); restructured into a Bridge type
// in the teacher's idiom of giving a long-running loop its own struct
// with explicit dependencies rather than module-level globals.
package hostbridge

import (
	"encoding/base64"
	"errors"
	"io"

	"github.com/google/uuid"

	"github.com/run-in-terminal/rit-host/internal/config"
	"github.com/run-in-terminal/rit-host/internal/logging"
	"github.com/run-in-terminal/rit-host/internal/wireproto"
)

var log = logging.Component("hostbridge")

// Bridge runs the extension-facing message loop for one native host
// process invocation.
type Bridge struct {
	in     io.Reader
	out    io.Writer
	cfg    config.Config
	client *DaemonClient
	runID  string
}

// New constructs a Bridge reading ExtMessages from in and writing
// BridgeMessages to out, using cfg for rendezvous timeout, spawn-lock,
// and dimension defaults.
func New(in io.Reader, out io.Writer, cfg config.Config) *Bridge {
	return &Bridge{in: in, out: out, cfg: cfg, runID: uuid.NewString()}
}

// Run processes messages from the extension until EOF or a "close"
// message, mirroring host_main's loop exactly, including the
// catch-anything-per-message error reporting the Python original does
// with its broad except Exception clause. EOF on the extension's
// stdin (the defer below) only detaches from the daemon; it does not
// tear the session down, since the whole point of the daemon outliving
// the host process is that a later "open" can re-attach to the same
// shell. Only an explicit "close" message (handled in handle()) tears
// the session down.
func (b *Bridge) Run() {
	log.Info("native host started", "run", b.runID)
	defer func() {
		log.Info("native host stopped", "run", b.runID)
		if b.client != nil {
			b.client.Detach()
		}
	}()

	for {
		var msg wireproto.ExtMessage
		if err := wireproto.DecodeFrame(b.in, &msg); err != nil {
			if !errors.Is(err, io.EOF) {
				log.Warn("malformed message from extension", "err", err)
			}
			return
		}

		if err := b.handle(msg); err != nil {
			b.sendError(err.Error())
		}
		if msg.Type == wireproto.TypeClose {
			return
		}
	}
}

func (b *Bridge) handle(msg wireproto.ExtMessage) error {
	switch msg.Type {
	case wireproto.TypeOpen:
		return b.handleOpen(msg)

	case wireproto.TypeStdin:
		if b.client == nil {
			return errors.New("stdin before open")
		}
		data, err := base64.StdEncoding.DecodeString(msg.DataB64)
		if err != nil {
			return err
		}
		b.client.Stdin(data)
		return nil

	case wireproto.TypeResize:
		if b.client != nil {
			b.client.Resize(msg.Cols, msg.Rows)
		}
		return nil

	case wireproto.TypePing:
		if b.client != nil {
			b.client.Ping()
		} else {
			b.send(wireproto.BridgeMessage{Type: wireproto.TypePong})
		}
		return nil

	case wireproto.TypeClose:
		if b.client != nil {
			b.client.Close()
			b.client = nil
			b.send(wireproto.BridgeMessage{Type: wireproto.TypeExit, Code: wireproto.IntPtr(0)})
		}
		return nil

	default:
		return errors.New("unknown message type")
	}
}

func (b *Bridge) handleOpen(msg wireproto.ExtMessage) error {
	session := msg.Session
	if session == "" {
		session = "default"
	}
	cols, rows := msg.Cols, msg.Rows
	if cols == 0 {
		cols = b.cfg.DefaultCols
	}
	if rows == 0 {
		rows = b.cfg.DefaultRows
	}
	shell := msg.Shell
	if shell == "" {
		shell = b.cfg.Shell
	}

	client := NewDaemonClient(session, b.send, b.cfg)
	if err := client.ConnectOrSpawn(shell, cols, rows); err != nil {
		return err
	}
	b.client = client
	return nil
}

func (b *Bridge) send(m wireproto.BridgeMessage) {
	if err := wireproto.WriteFrame(b.out, m); err != nil {
		log.Warn("failed writing to extension", "err", err)
	}
}

func (b *Bridge) sendError(message string) {
	b.send(wireproto.BridgeMessage{Type: wireproto.TypeError, Message: message})
}
