package log

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext extracts the logger stored in ctx. Without one it returns
// fallback, or a logger on the slog default when fallback is nil.
func FromContext(ctx context.Context, fallback *Logger) *Logger {
	if logger, ok := ctx.Value(contextKey{}).(*Logger); ok {
		return logger
	}
	if fallback != nil {
		return fallback
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}
