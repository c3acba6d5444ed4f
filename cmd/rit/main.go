// Command rit is the native messaging host binary: invoked by a
// browser as a host process it bridges one native-messaging stdio
// connection to a session daemon, and invoked with --session-daemon it
// becomes that daemon itself.
//
// Argv parsing is intentionally minimal: spec.md puts "command-line
// argument parsing beyond the single --session-daemon dispatch" out of
// scope, so this reads os.Args directly rather than pulling in a flag
// framework, matching the Python original's sys.argv check in main().
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/run-in-terminal/rit-host/internal/config"
	"github.com/run-in-terminal/rit-host/internal/logging"
	"github.com/run-in-terminal/rit-host/internal/paths"
)

func main() {
	if err := paths.EnsureDirs(); err != nil {
		fmt.Fprintln(os.Stderr, "rit: cannot create state directories:", err)
		os.Exit(1)
	}

	cfg, err := config.Load(paths.ConfigPath())
	if err != nil {
		fmt.Fprintln(os.Stderr, "rit: invalid config, using defaults:", err)
		cfg = config.Default()
	}

	if len(os.Args) >= 2 && os.Args[1] == "--session-daemon" {
		if len(os.Args) < 6 {
			fmt.Fprintln(os.Stderr, "rit: --session-daemon requires name shell cols rows")
			os.Exit(2)
		}
		runSessionDaemon(cfg, os.Args[2], os.Args[3], os.Args[4], os.Args[5])
		return
	}

	runHost(cfg)
}

func parseDimension(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func setupLogging(cfg config.Config, toFile bool) {
	level := logging.ParseLevel(cfg.LogLevel)
	if toFile {
		f, err := os.OpenFile(paths.LogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err == nil {
			logging.Setup(f, level)
			return
		}
	}
	logging.Setup(os.Stderr, level)
}
