//go:build !windows

package rendezvous

import (
	"os/exec"
	"syscall"
)

// configureDetached starts the child in its own session so it is not
// killed by the host's controlling terminal or process group; the
// child itself further detaches via internal/daemonize once running,
// matching the Python original's os.setsid() in daemon_detach_posix.
func configureDetached(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
