package rendezvous

import (
	"os"

	"github.com/run-in-terminal/rit-host/internal/paths"
)

// SpawnLock is an advisory, non-blocking file lock that narrows (but
// does not eliminate) the spawn race described in spec.md §4.2: two
// hosts racing EnsureSession for the same name can both fail to find
// a coordinates file and both spawn a daemon. The Python original
// accepts that race outright; this lock is a SPEC_FULL.md addition
// grounded on the pack's flock-based singleton patterns (see
// DESIGN.md). It is optional per internal/config.Config.SpawnLockEnabled
// and a no-op wherever locking isn't available (see lock_windows.go).
type SpawnLock struct {
	file *os.File
}

// TryAcquireSpawnLock attempts to take the named session's spawn lock
// without blocking. ok is false if another process already holds it;
// the caller should treat that as "someone else is spawning, go
// straight to polling" rather than an error.
func TryAcquireSpawnLock(name string) (lock *SpawnLock, ok bool, err error) {
	f, err := os.OpenFile(paths.LockPath(name), os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, false, err
	}
	acquired, err := tryFlock(f)
	if err != nil {
		_ = f.Close()
		return nil, false, err
	}
	if !acquired {
		_ = f.Close()
		return nil, false, nil
	}
	return &SpawnLock{file: f}, true, nil
}

// Release gives up the lock and closes the underlying file.
func (l *SpawnLock) Release() {
	if l == nil || l.file == nil {
		return
	}
	unlockFlock(l.file)
	_ = l.file.Close()
}
