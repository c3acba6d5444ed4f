package sessionserver

import (
	"encoding/base64"
	"errors"
	"io"
	"net"

	"github.com/google/uuid"

	"github.com/run-in-terminal/rit-host/internal/auth"
	"github.com/run-in-terminal/rit-host/internal/wireproto"
)

// serveClient authenticates, registers, and drives one bridge
// connection until it disconnects or sends "close". A failed or
// late handshake closes the connection before it is ever registered
// or sent a ready event, per spec.md §4.3.
func (s *Server) serveClient(conn net.Conn) {
	connID := uuid.NewString()

	if err := auth.ServerHandshake(conn, s.authkey[:]); err != nil {
		log.Warn("handshake failed", "name", s.name, "conn", connID, "err", err)
		_ = conn.Close()
		return
	}
	log.Debug("client connected", "name", s.name, "conn", connID)

	ready := wireproto.Event{
		Type:     wireproto.TypeReady,
		Session:  s.name,
		Platform: string(s.pty.Platform()),
		Shell:    s.shell,
	}
	if err := wireproto.WriteFrame(conn, ready); err != nil {
		_ = conn.Close()
		return
	}

	s.addClient(conn)
	defer func() {
		s.removeClient(conn)
		_ = conn.Close()
	}()

	for {
		var cmd wireproto.Command
		if err := wireproto.DecodeFrame(conn, &cmd); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				log.Debug("client read error", "name", s.name, "conn", connID, "err", err)
			}
			return
		}

		switch cmd.Cmd {
		case wireproto.CmdStdin:
			if cmd.DataB64 == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(cmd.DataB64)
			if err != nil {
				continue
			}
			_, _ = s.pty.Write(data)

		case wireproto.CmdResize:
			cols, rows := s.cols, s.rows
			if cmd.Cols > 0 {
				cols = uint16(cmd.Cols)
			}
			if cmd.Rows > 0 {
				rows = uint16(cmd.Rows)
			}
			_ = s.pty.Resize(cols, rows)

		case wireproto.CmdPing:
			_ = wireproto.WriteFrame(conn, wireproto.Event{Type: wireproto.TypePong})

		case wireproto.CmdInfo:
			_ = wireproto.WriteFrame(conn, wireproto.Event{
				Type:     wireproto.TypeInfo,
				Session:  s.name,
				Platform: string(s.pty.Platform()),
				Shell:    s.shell,
			})

		case wireproto.CmdClose:
			log.Info("client requested close", "name", s.name)
			s.Close()
			return
		}
	}
}
