package main

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// newLogger builds the command logger. The base level comes from
// LOG_LEVEL, each verbosity step lowers it, a negative verbosity
// only keeps errors. LOG_FORMAT=json selects the JSON output.
func newLogger(w io.Writer, verbosity int, debug bool) *slog.Logger {
	level := slog.LevelWarn
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	}
	switch {
	case debug:
		level = slog.LevelDebug
	case verbosity < 0:
		level = slog.LevelError
	case verbosity > 0:
		level -= slog.Level(4 * verbosity)
	}

	opts := &slog.HandlerOptions{Level: level, AddSource: debug}
	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
