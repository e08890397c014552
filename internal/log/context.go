package log

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// FromContext returns the request-scoped logger, or one over slog.Default
// reporting as "unknown" when ctx carries none.
func FromContext(ctx context.Context) *Logger {
	return FromContextOr(ctx, nil)
}

// FromContextOr is FromContext with a caller-chosen fallback.
func FromContextOr(ctx context.Context, fallback *Logger) *Logger {
	if logger, ok := ctx.Value(contextKey{}).(*Logger); ok {
		return logger
	}
	if fallback != nil {
		return fallback
	}
	return wrap(slog.Default().Handler(), "unknown")
}

// Default returns a logger over slog.Default reporting as component.
func Default(component string) *Logger {
	inner := slog.Default().Handler()
	if h, ok := inner.(componentHandler); ok {
		inner = h.inner
	}
	return wrap(inner, component)
}
