// Package logger defines the logging collaborator used throughout go-gpib.
//
// Every component that emits log records takes a Logger rather than calling a
// process-wide singleton, so applications can plug in their own logging
// framework and tests can assert on what was logged.
//
// Log Levels:
//
//   - DebugLevel: adapter meta-commands and other wire-level detail.
//   - InfoLevel:  device commands sent by instrument drivers.
//   - WarnLevel:  recoverable oddities, such as an empty query response.
//   - ErrorLevel: transport faults. The bus layer never returns these as panics.
package logger

// Level indicates the logging severity level.
type Level = int8

const (
	// DebugLevel logs are typically voluminous, and are usually disabled in production.
	DebugLevel Level = iota - 1
	// InfoLevel is the default logging priority.
	InfoLevel
	// WarnLevel logs are more important than Info, but don't need individual
	// human review.
	WarnLevel
	// ErrorLevel logs are high-priority. A healthy bus shouldn't produce them.
	ErrorLevel
)

// Logger defines a common interface for logging.
type Logger interface {
	// Debug logs a message at DebugLevel.
	Debug(msg string, keysAndValues ...any)
	// Info logs a message at InfoLevel.
	Info(msg string, keysAndValues ...any)
	// Warn logs a message at WarnLevel.
	Warn(msg string, keysAndValues ...any)
	// Error logs a message at ErrorLevel.
	Error(msg string, keysAndValues ...any)
	// With creates a child logger and adds structured context to it.
	// Key-values added to the child don't affect the parent, and vice versa.
	With(keyValues ...any) Logger
	// Level returns the minimum enabled level for this logger.
	Level() Level
	// SetLevel sets the minimum enabled level for this logger.
	SetLevel(level Level)
}
