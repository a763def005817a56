// Package log provides a structured logging interface for debiasing operations.
//
// The Logger interface is slog-compatible so the backend can be switched freely:
// NewSlogLogger wraps a *slog.Logger, NewZerologLogger wraps a zerolog.Logger and
// NewTestLogger captures JSON lines in memory for assertions.
//
// Example usage:
//
//	logger := log.GetLogger().With(
//	    log.ModelNameKey, "HardDebias",
//	    log.CriterionKey, "gender",
//	)
//	logger.Info("bias direction estimated",
//	    log.OperationKey, log.OperationFit,
//	    log.SamplesKey, 20,
//	    log.FeaturesKey, 300,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are alternating key-value pairs. With returns a child logger whose
// fields are attached to every record it emits.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	//
	// Example:
	//   logger.Info("transform finished",
	//       log.TargetsKey, 71290,
	//       log.DurationMsKey, 412,
	//   )
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	// Pass the error under ErrAttrKey so backends can attach its stack trace.
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given level.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4
	LevelInfo  Level = 0
	LevelWarn  Level = 4
	LevelError Level = 8
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// LoggerProvider defines an interface for creating and configuring loggers.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger with a specific component identifier.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for all loggers created by this provider.
	SetLevel(level Level)
}
