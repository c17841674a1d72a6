// Package logging provides structured logging setup for staybook.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Setup initializes the default slog logger on stderr, leaving stdout
// for command output. Dev mode uses human-readable text at debug level;
// otherwise JSON at info.
func Setup(devMode bool) {
	slog.SetDefault(New(os.Stderr, devMode))
}

// New builds a logger writing to w with the same handler choice as Setup.
func New(w io.Writer, devMode bool) *slog.Logger {
	var handler slog.Handler
	if devMode {
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return slog.New(handler)
}
