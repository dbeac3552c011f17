// Package logger configures the process-wide slog logger.
package logger

import (
	"log/slog"
	"os"
)

var log *slog.Logger

// Init installs a text handler on stdout. Debug level is enabled with
// DEBUG=true.
func Init(debug bool) {
	level := slog.LevelInfo
	if debug || os.Getenv("DEBUG") == "true" {
		level = slog.LevelDebug
	}

	log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)
}

func get() *slog.Logger {
	if log == nil {
		return slog.Default()
	}
	return log
}

func Info(msg string, args ...any)  { get().Info(msg, args...) }
func Warn(msg string, args ...any)  { get().Warn(msg, args...) }
func Error(msg string, args ...any) { get().Error(msg, args...) }
func Debug(msg string, args ...any) { get().Debug(msg, args...) }
