package main

import (
	"io"
	"log/slog"

	charmlog "github.com/charmbracelet/log"
)

// newLogger builds the root logger: JSON lines by default, a colored
// console handler for LOG_FORMAT=text.
func newLogger(format, level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	if format == "text" {
		h := charmlog.NewWithOptions(w, charmlog.Options{
			ReportTimestamp: true,
			Level:           charmlog.Level(lvl),
		})
		return slog.New(h)
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
}
