package log

import (
	"context"
	"log/slog"
	"net/http"
)

// StructuredLogger emits the fixed-shape events of the dashboard. Each call
// prefers the logger stored in ctx so request IDs follow the event.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

func (sl *StructuredLogger) from(ctx context.Context) *Logger {
	return FromContextOr(ctx, sl.logger)
}

// LogHTTPEnd logs request completion at a level chosen by status class.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	switch {
	case statusCode >= 500:
		level = slog.LevelError
	case statusCode >= 400:
		level = slog.LevelWarn
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery).
		WithHTTPResponse(statusCode, durationMs).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)

	sl.from(ctx).Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

func (sl *StructuredLogger) LogViewResolved(ctx context.Context, selection, chart string, rows int, cacheHit bool) {
	fields := NewFields().
		WithView(selection, chart, rows).
		WithOperation(OpResolve).
		WithComponent(ComponentViewModel)

	sl.from(ctx).DebugContext(ctx, "View resolved", append(fields, FieldCacheHit, cacheHit).ToSlice()...)
}

// LogError logs err with component and operation added to fields.
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component, operation string, fields LogFields) {
	fields = fields.
		WithError(err).
		WithOperation(operation).
		WithComponent(component)

	sl.from(ctx).ErrorContext(ctx, msg, fields.ToSlice()...)
}
