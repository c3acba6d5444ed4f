package main

import (
	"os"

	"github.com/run-in-terminal/rit-host/internal/config"
	"github.com/run-in-terminal/rit-host/internal/hostbridge"
)

// runHost is the entry point for host mode, equivalent to the Python
// original's host_main. It runs until the extension disconnects or
// sends "close". After a disconnect the session it attached to keeps
// running; a "close" message shuts that session down.
func runHost(cfg config.Config) {
	setupLogging(cfg, true)

	b := hostbridge.New(os.Stdin, os.Stdout, cfg)
	b.Run()
}
