// Package ptyproc wraps one child shell behind a uniform capability set
// {Spawn, ReadChunk, Write, Resize, PollExitCode, Close}, selecting one
// of three platform variants at Spawn time: posix-pty, win-pty, or
// win-pipe. It is the Go-generalized form of the teacher's
// internal/server PTY type, which hardcodes a single platform per build
// tag; here the Windows variant additionally falls back at runtime from
// win-pty to win-pipe, matching spec.md §4.1.
package ptyproc

import (
	"sync"
)

// Platform tags a PTY's underlying implementation.
type Platform string

const (
	PlatformPosixPTY Platform = "posix-pty"
	PlatformWinPTY   Platform = "win-pty"
	PlatformWinPipe  Platform = "win-pipe"
)

// ChunkSize is the read granularity used by PTY readers throughout this
// package, matching spec.md §4.3's 8 KiB pty-reader chunk size.
const ChunkSize = 8192

// PTY is the uniform interface a session server drives, regardless of
// which platform variant backs it.
type PTY interface {
	// Platform returns the variant chosen at Spawn.
	Platform() Platform
	// ReadChunk reads up to len(buf) bytes, returning (0, nil) on EOF.
	ReadChunk(buf []byte) (int, error)
	// Write pushes raw input to the child. Failures are the caller's to
	// log and swallow per spec.md §4.1.
	Write(data []byte) (int, error)
	// Resize issues the OS resize call. Implementations do not keep the
	// new size; callers track the current size themselves. No-op on
	// win-pipe.
	Resize(cols, rows uint16) error
	// PollExitCode returns the child's exit code and true if it has
	// exited, else (0, false).
	PollExitCode() (int, bool)
	// Close is idempotent: terminates the child and releases handles.
	Close() error
}

// Options configures a new PTY.
type Options struct {
	Shell string
	Cols  uint16
	Rows  uint16
}

// ResolveShell applies spec.md §4.1's shell-selection rule for the
// current platform, given a caller-supplied override (possibly empty).
func ResolveShell(override string) string {
	if override != "" {
		return override
	}
	return defaultShell()
}

// exitState is shared bookkeeping embedded by platform implementations
// to make Close idempotent and PollExitCode race-free.
type exitState struct {
	mu       sync.Mutex
	closed   bool
	exitCode int
	exited   bool
}

func (e *exitState) markExited(code int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.exited {
		e.exited = true
		e.exitCode = code
	}
}

func (e *exitState) poll() (int, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exitCode, e.exited
}

func (e *exitState) beginClose() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	e.closed = true
	return true
}
