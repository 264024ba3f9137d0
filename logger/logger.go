// Package logger holds the minimal structured logging interface the access
// engine writes through, with phuslu-style, slog and null implementations.
package logger

// Logger accepts alternating key/value pairs as variadic arguments. The
// interface is deliberately small so tests can swap in a recorder.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
}

// TraceIDFunc generates a correlation ID per audit entry. It must be cheap
// and safe for concurrent calls.
type TraceIDFunc func() string
