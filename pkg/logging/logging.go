// Package logging configures structured logging for the billpay server.
//
// Usage:
//
//	logger := logging.New(os.Stderr, slog.LevelInfo, logging.FormatText)
//	logging.SetDefault(logger)
//
// FormatText produces colored output with tint; FormatJSON produces one JSON
// object per line for log collectors.
package logging

import (
	"io"
	"log/slog"
	"time"

	"github.com/lmittmann/tint"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// New returns a logger writing to w at level in the given format. Unknown
// formats fall back to FormatText.
func New(w io.Writer, level slog.Level, format string) *slog.Logger {
	if format == FormatJSON {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     level,
			AddSource: true,
		}))
	}
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  true,
	}))
}

// SetDefault installs logger as the process-wide default and returns it.
func SetDefault(logger *slog.Logger) *slog.Logger {
	slog.SetDefault(logger)
	return logger
}
