//go:build windows

package daemonize

// detach is a no-op on Windows: DETACHED_PROCESS at spawn time already
// means this process has no console and no inherited stdio to sever.
func detach() {}
