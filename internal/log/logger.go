package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is a slog.Logger bound to a component. Every record it emits
// carries a component attribute unless the call site supplies one.
type Logger struct {
	*slog.Logger
	component string
}

// Config holds logger configuration
type Config struct {
	Level     slog.Level
	Component string
	Output    io.Writer
	// JSON switches the default text handler to slog's JSON handler.
	JSON    bool
	Handler slog.Handler
}

// DefaultConfig returns sensible defaults for logging
func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		Component: ComponentApp,
		Output:    os.Stdout,
	}
}

// New creates a new logger with the given configuration
func New(config Config) *Logger {
	handler := config.Handler
	if handler == nil {
		out := config.Output
		if out == nil {
			out = os.Stdout
		}
		opts := &slog.HandlerOptions{Level: config.Level}
		if config.JSON {
			handler = slog.NewJSONHandler(out, opts)
		} else {
			handler = slog.NewTextHandler(out, opts)
		}
	}
	return wrap(handler, config.Component)
}

func wrap(inner slog.Handler, component string) *Logger {
	return &Logger{
		Logger:    slog.New(componentHandler{inner: inner, component: component}),
		component: component,
	}
}

// ParseLevel maps debug|info|warn|error onto a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// LevelFromFlags resolves the CLI verbosity flags. Flags win over fallback.
//
//   - quiet mode:   only WARN and ERROR messages
//   - verbose mode: DEBUG and above
func LevelFromFlags(verbose, quiet bool, fallback slog.Level) slog.Level {
	switch {
	case quiet:
		return slog.LevelWarn
	case verbose:
		return slog.LevelDebug
	default:
		return fallback
	}
}

// With returns a logger that adds args to every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...), component: l.component}
}

// WithComponent returns a logger reporting under component instead.
func (l *Logger) WithComponent(component string) *Logger {
	inner := l.Logger.Handler()
	if h, ok := inner.(componentHandler); ok {
		inner = h.inner
	}
	return wrap(inner, component)
}

// Component returns the logger's component name
func (l *Logger) Component() string {
	return l.component
}

// SetDefault sets the default logger for the application
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.Logger)
}

// componentHandler adds the component attribute to records that lack one.
type componentHandler struct {
	inner     slog.Handler
	component string
}

func (h componentHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h componentHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.component != "" && !hasComponent(r) {
		r = r.Clone()
		r.AddAttrs(slog.String(FieldComponent, h.component))
	}
	return h.inner.Handle(ctx, r)
}

func (h componentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	for _, a := range attrs {
		if a.Key == FieldComponent {
			h.component = ""
		}
	}
	h.inner = h.inner.WithAttrs(attrs)
	return h
}

func (h componentHandler) WithGroup(name string) slog.Handler {
	h.inner = h.inner.WithGroup(name)
	return h
}

func hasComponent(r slog.Record) bool {
	found := false
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == FieldComponent {
			found = true
			return false
		}
		return true
	})
	return found
}
