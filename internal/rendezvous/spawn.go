package rendezvous

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// SessionDaemonFlag is the argv[1] value that re-dispatches this
// binary into session-daemon mode, per spec.md §6.
const SessionDaemonFlag = "--session-daemon"

// NoShellToken is the placeholder argv value meaning "use the default
// shell", matching the Python original's "_" sentinel (argv has no
// way to carry an absent string).
const NoShellToken = "_"

// SpawnDetachedDaemon re-execs the current binary in session-daemon
// mode with args that will outlive this process, matching the Python
// original's spawn_detached_daemon. The child publishes its own
// coordinates file once its listener is up; this function does not
// wait for that.
func SpawnDetachedDaemon(name, shell string, cols, rows int) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("rendezvous: resolve executable: %w", err)
	}

	shellArg := shell
	if shellArg == "" {
		shellArg = NoShellToken
	}

	args := []string{SessionDaemonFlag, name, shellArg, strconv.Itoa(cols), strconv.Itoa(rows)}
	cmd := exec.Command(exe, args...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	configureDetached(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("rendezvous: spawn session daemon: %w", err)
	}
	// The Python original never waits on the detached child; releasing
	// it here avoids leaving a zombie entry in our own process table
	// once it daemonizes (POSIX) or simply runs detached (Windows).
	go func() { _ = cmd.Wait() }()
	return nil
}
