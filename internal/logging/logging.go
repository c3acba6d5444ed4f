// Package logging sets up structured logging for the native host.
// It mirrors the component-scoped, level-filtered logger the teacher
// repo hand-rolls in internal/logging, but is built directly on
// log/slog: a tint handler for human-readable terminal output, and
// slog.JSONHandler once output is redirected to the on-disk log file.
package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

// Setup installs the process-wide default logger, writing to w at the
// given level. When w is a terminal, output is colorized text via tint;
// otherwise it is line-delimited JSON, suitable for rit.log.
func Setup(w io.Writer, level slog.Level) {
	var handler slog.Handler
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
		})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}

// Component returns a logger tagged with a component name, the slog
// equivalent of the teacher's logging.WithComponent.
func Component(name string) *slog.Logger {
	return slog.Default().With("component", name)
}

// ParseLevel maps a config/flag string to a slog.Level, defaulting to Info.
func ParseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
