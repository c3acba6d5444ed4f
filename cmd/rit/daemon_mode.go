package main

import (
	"os"

	"github.com/run-in-terminal/rit-host/internal/config"
	"github.com/run-in-terminal/rit-host/internal/daemonize"
	"github.com/run-in-terminal/rit-host/internal/rendezvous"
	"github.com/run-in-terminal/rit-host/internal/sessionserver"
)

// runSessionDaemon is the entry point for session-daemon mode,
// equivalent to the Python original's session_main. shellToken is
// rendezvous.NoShellToken ("_") for "use the default shell".
func runSessionDaemon(cfg config.Config, name, shellToken, colsArg, rowsArg string) {
	setupLogging(cfg, true)
	daemonize.Detach()

	shell := shellToken
	if shell == rendezvous.NoShellToken {
		shell = ""
	}
	cols := parseDimension(colsArg, cfg.DefaultCols)
	rows := parseDimension(rowsArg, cfg.DefaultRows)

	srv := sessionserver.New(sessionserver.Options{
		Name:  name,
		Shell: shell,
		Cols:  uint16(cols),
		Rows:  uint16(rows),
	})
	if err := srv.Run(); err != nil {
		os.Exit(1)
	}
}
