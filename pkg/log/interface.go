// Package log provides the structured logging interface used by the varforest
// estimators and command line tools.
//
// The Logger interface mirrors log/slog's key/value calling convention so call
// sites read the same whichever backend is installed. The default backend is
// zerolog, writing JSON to stderr at warn level; commands call SetupLogger to
// change destination and level, and tests swap in a TestLogger.
//
// Example usage:
//
//	logger := log.GetLoggerWithName("ensemble.forest").With(
//	    log.ModelNameKey, "RandomForestRegressor",
//	)
//	logger.Info("Training completed",
//	    log.OperationKey, log.OperationFit,
//	    log.TreesKey, 64,
//	    log.DurationMsKey, 152,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's log/slog.
//
// Fields are alternating key/value pairs. Keys should be the constants from
// attributes.go so records from every component can be filtered the same way.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	// Used for per-tree and per-node diagnostics that are off by default.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	// If the first field is an error value it is attached as the record's
	// error together with its stack trace:
	//
	//	logger.Error("Fit failed", err, log.OperationKey, log.OperationFit)
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits log records at the given level.
	// Use it to skip building expensive fields:
	//
	//	if logger.Enabled(ctx, log.LevelDebug) {
	//	    logger.Debug("tree shape", log.NodesKey, tree.NodeCount())
	//	}
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4 // Detailed diagnostic information
	LevelInfo  Level = 0  // General operational information
	LevelWarn  Level = 4  // Warning conditions
	LevelError Level = 8  // Error conditions
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
// This interface allows for dependency injection and testing with different
// logger implementations.
type LoggerProvider interface {
	// GetLogger returns the default logger instance.
	GetLogger() Logger

	// GetLoggerWithName returns a logger with a specific name/component identifier.
	GetLoggerWithName(name string) Logger

	// SetLevel sets the minimum log level for all loggers created by this provider.
	SetLevel(level Level)
}
