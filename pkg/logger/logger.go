package logger

import (
	"log/slog"
	"os"
)

var Log *slog.Logger

// Init sets up the process-wide JSON logger. LOG_LEVEL=debug enables debug
// output; anything else stays at info.
func Init() {
	level := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})
	Log = slog.New(handler)
}
