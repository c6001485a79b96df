// Package log provides an interface to a global leveled logger.
package log // import "telemesh.io/prototype/internal/log"

import (
	"github.com/tav/golly/process"
	"go.uber.org/zap"
)

var root *zap.Logger

// Debug logs the given text and fields at DebugLevel.
func Debug(msg string, fields ...Field) {
	root.Debug(msg, fields...)
}

// Error logs the given text and fields at ErrorLevel.
func Error(msg string, fields ...Field) {
	root.Error(msg, fields...)
}

// Fatal logs the given text and fields at FatalLevel and then exits.
func Fatal(msg string, fields ...Field) {
	root.Fatal(msg, fields...)
}

// Info logs the given text and fields at InfoLevel.
func Info(msg string, fields ...Field) {
	root.Info(msg, fields...)
}

// Warn logs the given text and fields at WarnLevel.
func Warn(msg string, fields ...Field) {
	root.Warn(msg, fields...)
}

// SetGlobalFields presets the given fields on the root logger.
func SetGlobalFields(fields ...Field) {
	root = root.With(fields...)
}

// With returns a logger that comes preset with the given fields.
func With(fields ...Field) *zap.Logger {
	return root.With(fields...)
}

func init() {
	// Make sure logging works before any explicit Init call, e.g. in tests,
	// and flush the logs before exiting the process.
	if err := InitConsoleLogger(InfoLevel); err != nil {
		panic(err)
	}
	process.SetExitHandler(func() {
		if root != nil {
			root.Sync()
		}
	})
}
