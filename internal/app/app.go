package app

import (
	"io"
	"log/slog"
)

// NewLogger returns the text logger used by every service. Services only
// log public data: key ids, session ids, fingerprints and counts.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
