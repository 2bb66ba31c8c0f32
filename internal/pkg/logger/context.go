package logger

import (
	"context"

	"go.uber.org/zap"
)

// Context keys
type contextKey string

const (
	loggerKey contextKey = "logger"
	runIDKey  contextKey = "run_id"
)

// WithContext returns a logger with fields from context
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	if runID, ok := ctx.Value(runIDKey).(string); ok && runID != "" {
		return l.With(zap.String("run_id", runID))
	}

	return l
}

// FromContext extracts logger from context, returns default logger if not found
func FromContext(ctx context.Context) *Logger {
	if ctx == nil {
		return L()
	}

	if logger, ok := ctx.Value(loggerKey).(*Logger); ok && logger != nil {
		return logger.WithContext(ctx)
	}

	return L().WithContext(ctx)
}

// ToContext adds logger to context
func ToContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// WithRunID adds a summarization run ID to context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// GetRunID extracts the summarization run ID from context
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(runIDKey).(string); ok {
		return runID
	}
	return ""
}

// Convenience methods for context-aware logging
func DebugContext(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Debug(msg, fields...)
}

func InfoContext(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Info(msg, fields...)
}

func WarnContext(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Warn(msg, fields...)
}

func ErrorContext(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Error(msg, fields...)
}

func FatalContext(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Fatal(msg, fields...)
}

func PanicContext(ctx context.Context, msg string, fields ...zap.Field) {
	FromContext(ctx).Panic(msg, fields...)
}
