package rendezvous

import (
	"fmt"
	"net"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/run-in-terminal/rit-host/internal/logging"
	"github.com/run-in-terminal/rit-host/internal/paths"
)

var log = logging.Component("rendezvous")

// EnsureOptions configures EnsureSession.
type EnsureOptions struct {
	Shell            string
	Cols             int
	Rows             int
	Timeout          time.Duration
	SpawnLockEnabled bool
}

// EnsureSession resolves to a live, authenticated connection for the
// named session: reuse an existing daemon if its coordinates are
// still reachable, otherwise spawn one and poll until it publishes
// reachable coordinates or Timeout elapses. It is the direct
// generalization of the Python original's ensure_session, with two
// additions from spec.md §4.2: an optional advisory spawn lock to
// narrow the two-host spawn race, and an fsnotify watch on the workers
// directory so a freshly published coordinates file is picked up
// immediately instead of waiting for the next poll tick.
func EnsureSession(name string, opts EnsureOptions) (net.Conn, *Coordinates, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	if info, ok := ReadInfo(name); ok {
		if conn, err := TryConnect(info); err == nil {
			return conn, info, nil
		}
		if processAlive(info.PID) {
			log.Warn("stale coordinates for a still-running daemon, respawning", "name", name, "pid", info.PID)
		} else {
			log.Info("daemon process no longer running, respawning", "name", name, "pid", info.PID)
		}
	}

	var lock *SpawnLock
	if opts.SpawnLockEnabled {
		if l, acquired, err := TryAcquireSpawnLock(name); err == nil && acquired {
			lock = l
		}
		// If not acquired, another host is already spawning this name;
		// fall through to polling either way.
	}

	if lock != nil || !opts.SpawnLockEnabled {
		if err := SpawnDetachedDaemon(name, opts.Shell, opts.Cols, opts.Rows); err != nil {
			if lock != nil {
				lock.Release()
			}
			return nil, nil, err
		}
	}
	if lock != nil {
		defer lock.Release()
	}

	wake := watchWorkersDir()
	if wake != nil {
		defer wake.Close()
	}

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(timeout / 100)
	defer ticker.Stop()

	for time.Now().Before(deadline) {
		if info, ok := ReadInfo(name); ok {
			if conn, err := TryConnect(info); err == nil {
				log.Info("session reachable", "name", name)
				return conn, info, nil
			}
		}

		if wake != nil {
			select {
			case <-wake.Events:
			case <-wake.Errors:
			case <-ticker.C:
			case <-time.After(time.Until(deadline)):
			}
		} else {
			<-ticker.C
		}
	}

	log.Warn("session not reachable before timeout", "name", name, "timeout", timeout)
	return nil, nil, fmt.Errorf("rendezvous: session %q was not reachable after %s", name, timeout)
}

// watcherHandle is the subset of *fsnotify.Watcher EnsureSession
// relies on, narrowed so a failed watcher setup degrades to
// poll-only instead of failing EnsureSession outright.
type watcherHandle struct {
	*fsnotify.Watcher
}

func watchWorkersDir() *watcherHandle {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil
	}
	if err := w.Add(paths.WorkersDir()); err != nil {
		_ = w.Close()
		return nil
	}
	return &watcherHandle{w}
}
