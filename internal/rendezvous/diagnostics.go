package rendezvous

import (
	gopsutilprocess "github.com/shirou/gopsutil/v3/process"
)

// processAlive reports whether pid belongs to a running process. It is
// used purely for diagnostics when a coordinates file is unreachable:
// knowing whether the daemon crashed outright versus is merely slow to
// accept helps an operator reading the log tell the two apart. It
// never gates EnsureSession's control flow, since a false negative
// here must never block a legitimate respawn.
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	alive, err := gopsutilprocess.PidExists(int32(pid))
	if err != nil {
		return false
	}
	return alive
}
