// Package output provides terminal output utilities for dvctl.
package output

import (
	"os"

	"github.com/charmbracelet/log"
)

// logger is the package-level logger used by the helpers below.
var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      "15:04:05",
})

// LogConfig controls logger setup.
type LogConfig struct {
	// Verbose enables debug level and caller reporting, and forces timestamps on.
	Verbose bool

	// Timestamps controls timestamp output. nil means the default (on).
	Timestamps *bool
}

// SetupLogging configures the package logger.
func SetupLogging(cfg LogConfig) {
	level := log.InfoLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}

	timestamps := true
	if cfg.Timestamps != nil {
		timestamps = *cfg.Timestamps
	}
	if cfg.Verbose {
		timestamps = true
	}

	logger = log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: timestamps,
		ReportCaller:    cfg.Verbose,
		TimeFormat:      "15:04:05",
	})
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}

// ScopeLogger returns a child logger prefixed with "<kind>:<name>",
// e.g. "flow:sales_init" or "gen:ddl".
func ScopeLogger(kind, name string) *log.Logger {
	return logger.WithPrefix(StyleDim.Render(kind+":") + StyleNoun.Render(name))
}

// Debug logs a debug message.
func Debug(msg string, keyvals ...interface{}) {
	logger.Debug(msg, keyvals...)
}

// Info logs an info message.
func Info(msg string, keyvals ...interface{}) {
	logger.Info(msg, keyvals...)
}

// Warn logs a warning message.
func Warn(msg string, keyvals ...interface{}) {
	logger.Warn(msg, keyvals...)
}

// Println prints a message to stdout with a newline.
func Println(msg string) {
	os.Stdout.WriteString(msg + "\n")
}
