// Package daemonize closes off a session daemon's inherited stdio once
// it no longer needs to talk to its parent, the last step of making it
// survive the host process exiting.
//
// The Python original achieves full detachment from inside the child
// with a double-fork + setsid (daemon_detach_posix): fork once and
// exit the first child so the process is reparented, call setsid to
// leave the parent's session, fork again so the new session leader
// can't reacquire a controlling terminal, then close stdin/stdout/
// stderr. Go cannot replicate a literal fork() once goroutines and the
// runtime's background threads are running, so this module splits
// that job across spawn time and run time instead of mid-process:
// internal/rendezvous.SpawnDetachedDaemon already starts the child
// with SysProcAttr{Setsid: true} (POSIX) or the DETACHED_PROCESS /
// CREATE_NEW_PROCESS_GROUP creation flags (Windows), which is Go's
// first-class spawn-detached primitive and gets the new session/
// process-group membership for free, before the child ever calls
// daemonize.Detach. All that is left for the child to do once running
// is sever its stdio, which this package does.
package daemonize

// Detach severs the current process's stdin/stdout/stderr so it no
// longer holds the parent's pipes open. Safe to call once at the
// start of session-daemon mode, after argv parsing and before the PTY
// and listener are created.
func Detach() {
	detach()
}
