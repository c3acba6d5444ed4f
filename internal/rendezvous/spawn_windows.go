//go:build windows

package rendezvous

import (
	"os/exec"
	"syscall"
)

const (
	createNewProcessGroup = 0x00000200
	detachedProcess       = 0x00000008
)

// configureDetached applies the creation flags the Python original
// uses on Windows (CREATE_NEW_PROCESS_GROUP | DETACHED_PROCESS), which
// by themselves achieve the detachment daemon_detach_posix gets via
// fork+setsid on POSIX; internal/daemonize's Windows variant is
// therefore a no-op.
func configureDetached(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: createNewProcessGroup | detachedProcess,
	}
}
