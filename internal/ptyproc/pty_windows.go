//go:build windows

package ptyproc

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"unicode/utf8"

	"github.com/UserExistsError/conpty"

	"github.com/run-in-terminal/rit-host/internal/paths"
)

// winConPTY is grounded on the teacher's internal/server.PTY
// (pty_windows.go), generalized to the shared PTY interface.
type winConPTY struct {
	cpty *conpty.ConPty
	exitState
}

// winPipe is the anonymous-pipe fallback spec.md §4.1 requires when
// ConPTY is unavailable (old Windows builds, sandboxed environments).
// There is no teacher equivalent for this path; it is grounded directly
// on the Python original's subprocess.PIPE fallback in PTYShell.spawn().
type winPipe struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	exitState
}

func defaultShell() string {
	if sh := os.Getenv("COMSPEC"); sh != "" {
		return sh
	}
	if _, err := exec.LookPath("powershell.exe"); err == nil {
		return "powershell.exe"
	}
	return "cmd.exe"
}

// Spawn starts a Windows shell, preferring ConPTY (platform tag
// win-pty) and falling back to a plain anonymous-pipe subprocess
// (platform tag win-pipe) if ConPTY creation fails.
func Spawn(opts Options) (PTY, error) {
	shell := ResolveShell(opts.Shell)
	home := paths.HomeDir()

	cols, rows := int(opts.Cols), int(opts.Rows)
	if cols == 0 {
		cols = 100
	}
	if rows == 0 {
		rows = 30
	}

	cptyOpts := []conpty.ConPtyOption{conpty.ConPtyDimensions(cols, rows)}
	if home != "" {
		cptyOpts = append(cptyOpts, conpty.ConPtyWorkDir(home))
	}
	cpty, err := conpty.Start(shell, cptyOpts...)
	if err == nil {
		p := &winConPTY{cpty: cpty}
		go p.reap()
		return p, nil
	}

	return spawnPipe(shell, home)
}

func spawnPipe(shell, home string) (PTY, error) {
	cmd := exec.Command(shell)
	cmd.Dir = home

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return nil, err
	}

	p := &winPipe{
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReaderSize(stdout, ChunkSize),
	}
	go p.reap()
	return p, nil
}

func (p *winConPTY) reap() {
	code, err := p.cpty.Wait(context.Background())
	if err != nil {
		code = -1
	}
	p.markExited(code)
}

func (p *winConPTY) Platform() Platform { return PlatformWinPTY }

func (p *winConPTY) ReadChunk(buf []byte) (int, error) {
	return p.cpty.Read(buf)
}

// Write lossy-decodes data as UTF-8 before handing it to the
// pseudo-console, matching the Python original's decode("utf-8",
// "ignore") treatment and the same cleanup winPipe.ReadChunk applies
// on its read path: ConPTY's Write takes a byte stream, but the
// extension may hand us a chunk split mid multibyte-sequence.
func (p *winConPTY) Write(data []byte) (int, error) {
	return p.cpty.Write(stripInvalidUTF8(data))
}

func (p *winConPTY) Resize(cols, rows uint16) error {
	return p.cpty.Resize(int(cols), int(rows))
}

func (p *winConPTY) PollExitCode() (int, bool) {
	return p.poll()
}

func (p *winConPTY) Close() error {
	if !p.beginClose() {
		return nil
	}
	return p.cpty.Close()
}

func (p *winPipe) reap() {
	err := p.cmd.Wait()
	code := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		} else {
			code = -1
		}
	}
	p.markExited(code)
}

func (p *winPipe) Platform() Platform { return PlatformWinPipe }

// ReadChunk decodes as UTF-8, dropping invalid bytes, matching the
// Python original's decode("utf-8", "ignore") on this fallback path.
func (p *winPipe) ReadChunk(buf []byte) (int, error) {
	n, err := p.stdout.Read(buf)
	if n > 0 {
		s := string(stripInvalidUTF8(buf[:n]))
		copy(buf, s)
		n = len(s)
	}
	if err != nil {
		return n, nil
	}
	return n, nil
}

// stripInvalidUTF8 drops bytes that don't decode as valid UTF-8,
// matching the Python original's decode("utf-8", "ignore"). Used on
// both the winPipe read path and the winConPTY write path, since
// either direction can see a chunk boundary split a multibyte
// sequence.
func stripInvalidUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}
	cleaned := make([]rune, 0, len(data))
	for _, r := range string(data) {
		if r != utf8.RuneError {
			cleaned = append(cleaned, r)
		}
	}
	return []byte(string(cleaned))
}

func (p *winPipe) Write(data []byte) (int, error) {
	return p.stdin.Write(data)
}

// Resize is a no-op on the pipe fallback: there is no console buffer to
// resize without a pty, per spec.md §4.1.
func (p *winPipe) Resize(cols, rows uint16) error {
	return nil
}

func (p *winPipe) PollExitCode() (int, bool) {
	return p.poll()
}

func (p *winPipe) Close() error {
	if !p.beginClose() {
		return nil
	}
	_ = p.stdin.Close()
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	return nil
}
