package access

import "github.com/swifthaul/access/logger"

// Logger is re-exported so callers configuring the engine do not need to
// import the logger package directly.
type Logger = logger.Logger

// WithLogger installs a Logger on the Engine via EngineOption.
func WithLogger(l logger.Logger) EngineOption {
	return func(e *Engine) error {
		if l != nil {
			e.logger = l
		}
		return nil
	}
}

// WithTraceIDFunc installs a custom audit entry ID generator on the engine.
func WithTraceIDFunc(f logger.TraceIDFunc) EngineOption {
	return func(e *Engine) error {
		if f != nil {
			e.traceIDFunc = f
		}
		return nil
	}
}
