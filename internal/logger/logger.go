// Package logger provides the process-wide structured logger.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

// Logger is the global logger instance.
var Logger = newLogger(os.Stderr, log.WarnLevel)

func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.New(w)
	l.SetTimeFormat("")
	l.SetReportTimestamp(false)
	l.SetLevel(level)
	return l
}

// Configure sets the level from a --verbosity value: quiet, info or debug.
// Empty falls back to VERSIONIST_LOG_LEVEL, then to quiet.
func Configure(verbosity string) {
	if verbosity == "" {
		verbosity = os.Getenv("VERSIONIST_LOG_LEVEL")
	}
	Logger.SetLevel(ParseLevel(verbosity))
}

// ParseLevel maps a verbosity name to a log level.
func ParseLevel(verbosity string) log.Level {
	switch strings.ToLower(verbosity) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.WarnLevel
	}
}

// SetOutput redirects log output, keeping the current level.
func SetOutput(w io.Writer) {
	Logger = newLogger(w, Logger.GetLevel())
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg interface{}, keyvals ...interface{}) {
	Logger.Debug(msg, keyvals...)
}

// Info logs an info message with optional key-value pairs.
func Info(msg interface{}, keyvals ...interface{}) {
	Logger.Info(msg, keyvals...)
}

// Warn logs a warning message with optional key-value pairs.
func Warn(msg interface{}, keyvals ...interface{}) {
	Logger.Warn(msg, keyvals...)
}

// Error logs an error message with optional key-value pairs.
func Error(msg interface{}, keyvals ...interface{}) {
	Logger.Error(msg, keyvals...)
}
