// Package logger provides the process-wide structured logger built on log/slog.
//
// Init is called once from cmd/server after the configuration is loaded.
// Before that, L writes human-readable text at debug level so packages that
// log during tests still produce output.
package logger

import (
	"io"
	"log/slog"
	"os"
)

// L is the base logger.
var L = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

// Init configures L for the given app mode: JSON at info level in prod,
// text at debug level otherwise.
func Init(appMode string) {
	L = New(os.Stdout, appMode)
	slog.SetDefault(L)
}

// New builds a logger writing to w.
func New(w io.Writer, appMode string) *slog.Logger {
	if appMode == "prod" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level.
func Error(msg string, args ...any) { L.Error(msg, args...) }
