//go:build !windows

package ptyproc

import (
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/creack/pty"

	"github.com/run-in-terminal/rit-host/internal/paths"
)

// posixPTY is grounded on the teacher's internal/server.PTY
// (pty.go/pty_unix.go), adapted to the Options/exitState shape shared
// across platforms and to spec.md §4.1's exact semantics: chdir into
// the user's home directory before spawning, run the shell as a login
// shell in its own session, and escalate SIGTERM->SIGKILL on close
// rather than the teacher's single SIGHUP.
type posixPTY struct {
	ptmx     *os.File
	cmd      *exec.Cmd
	waitDone chan struct{}
	exitState
}

func defaultShell() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/bash"
}

// Spawn starts a POSIX pty-backed shell per Options and returns the
// platform tag posix-pty.
func Spawn(opts Options) (PTY, error) {
	shell := ResolveShell(opts.Shell)

	home := paths.HomeDir()
	prevWD, _ := os.Getwd()
	if home != "" {
		_ = os.Chdir(home)
	}

	cmd := exec.Command(shell, "-l")
	cmd.Dir = home
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	cols, rows := opts.Cols, opts.Rows
	if cols == 0 {
		cols = 100
	}
	if rows == 0 {
		rows = 30
	}

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: rows, Cols: cols})
	if prevWD != "" {
		_ = os.Chdir(prevWD)
	}
	if err != nil {
		return nil, err
	}

	p := &posixPTY{ptmx: ptmx, cmd: cmd, waitDone: make(chan struct{})}
	go p.reap()
	return p, nil
}

func (p *posixPTY) reap() {
	err := p.cmd.Wait()
	close(p.waitDone)
	code := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		} else {
			code = -1
		}
	}
	p.markExited(code)
}

func (p *posixPTY) Platform() Platform { return PlatformPosixPTY }

func (p *posixPTY) ReadChunk(buf []byte) (int, error) {
	n, err := p.ptmx.Read(buf)
	if err != nil {
		if err == io.EOF {
			return n, nil
		}
		return n, err
	}
	return n, nil
}

func (p *posixPTY) Write(data []byte) (int, error) {
	return p.ptmx.Write(data)
}

func (p *posixPTY) Resize(cols, rows uint16) error {
	return pty.Setsize(p.ptmx, &pty.Winsize{Rows: rows, Cols: cols})
}

func (p *posixPTY) PollExitCode() (int, bool) {
	return p.poll()
}

// Close matches spec.md §4.1's escalation: SIGTERM to the process
// group, a 2s grace period, then SIGKILL if the child has not exited.
func (p *posixPTY) Close() error {
	if !p.beginClose() {
		return nil
	}

	pid := 0
	if p.cmd.Process != nil {
		pid = p.cmd.Process.Pid
	}
	if pid > 0 {
		_ = syscall.Kill(-pid, syscall.SIGTERM)
	}

	select {
	case <-p.waitDone:
	case <-time.After(2 * time.Second):
		if pid > 0 {
			_ = syscall.Kill(-pid, syscall.SIGKILL)
		}
		<-p.waitDone
	}

	return p.ptmx.Close()
}
