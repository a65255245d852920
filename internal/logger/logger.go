// Package logger is the process-wide structured logger. Text output on
// stderr; debug level is toggled by GENIE_DEBUG and adjustable at runtime.
package logger

import (
	"log/slog"
	"os"
	"strings"
)

var level = new(slog.LevelVar)

var log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

func init() {
	if truthy(os.Getenv("GENIE_DEBUG")) {
		level.Set(slog.LevelDebug)
	}
}

// SetDebug switches debug logging on or off for the whole process.
func SetDebug(on bool) {
	if on {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func Debug(msg string, args ...any) {
	log.Debug(msg, args...)
}

func Info(msg string, args ...any) {
	log.Info(msg, args...)
}

func Warn(msg string, args ...any) {
	log.Warn(msg, args...)
}

func Error(msg string, args ...any) {
	log.Error(msg, args...)
}

func Fatal(msg string, args ...any) {
	log.Error(msg, args...)
	os.Exit(1)
}
