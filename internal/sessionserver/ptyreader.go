package sessionserver

import (
	"encoding/base64"
	"net"
	"runtime"
	"time"

	"github.com/run-in-terminal/rit-host/internal/ptyproc"
	"github.com/run-in-terminal/rit-host/internal/wireproto"
)

// ptyReaderLoop is the single reader of this session's PTY: it
// broadcasts each chunk as a data event to every connected client and
// finishes with exactly one exit event, matching spec.md §4.3's
// ordering guarantee (ready -> data* -> exit per channel). Grounded on
// the Python original's _pty_reader, including its platform split: on
// Windows (and win-pipe in particular) a zero-byte, no-error read
// means EOF rather than "nothing available yet", since pywinpty/pipe
// reads there don't distinguish the two the way a POSIX pty does.
// Once the PTY has ended it shuts the whole server down via Close.
func (s *Server) ptyReaderLoop() {
	defer s.Close()
	buf := make([]byte, ptyproc.ChunkSize)
	isWindows := runtime.GOOS == "windows"

	for {
		select {
		case <-s.stop:
			return
		default:
		}

		n, err := s.pty.ReadChunk(buf)
		if err != nil {
			break
		}
		if n == 0 {
			if code, exited := s.pty.PollExitCode(); exited {
				s.broadcastExit(code)
				return
			}
			if isWindows {
				s.broadcastExit(0)
				return
			}
			time.Sleep(20 * time.Millisecond)
			continue
		}

		chunk := make([]byte, n)
		copy(chunk, buf[:n])
		data := wireproto.Event{
			Type:    wireproto.TypeData,
			DataB64: base64.StdEncoding.EncodeToString(chunk),
		}
		s.broadcast(func(c net.Conn) error {
			return wireproto.WriteFrame(c, data)
		})
	}

	code, _ := s.pty.PollExitCode()
	s.broadcastExit(code)
}

func (s *Server) broadcastExit(code int) {
	ev := wireproto.Event{Type: wireproto.TypeExit, Code: wireproto.IntPtr(code)}
	// exit is the last event a channel gets: each client is dropped
	// after it, so the Close that follows does not send a second one.
	s.broadcast(func(c net.Conn) error {
		err := wireproto.WriteFrame(c, ev)
		s.removeClient(c)
		_ = c.Close()
		return err
	})
	log.Info("pty reader ended", "name", s.name, "code", code)
}
