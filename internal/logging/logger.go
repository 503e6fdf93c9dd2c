// Package logging provides a logging abstraction that decouples the
// application from the underlying logging framework.
package logging

// Logger is the structured logging interface used throughout the
// application. Implementations attach fields to messages without the
// callers knowing the backing framework.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithError returns a new logger with an error field attached.
	WithError(err error) Logger

	// WithField returns a new logger with a single field attached.
	WithField(key string, value any) Logger
}

// Field is a key-value pair attached to a log message.
type Field struct {
	Key   string
	Value any
}

// F is shorthand for constructing a Field at a call site.
func F(key string, value any) Field {
	return Field{Key: key, Value: value}
}
