package logger

import (
	"log/slog"
	"os"
)

// New returns a JSON slog logger writing to stdout. Level defaults to info;
// set TRADEGATE_LOG_DEBUG=true for debug output.
func New() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("TRADEGATE_LOG_DEBUG") == "true" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
