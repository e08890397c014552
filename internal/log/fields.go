package log

// Attribute keys shared by every component.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldSelection  = "selection"
	FieldChartKind  = "chart"
	FieldRows       = "rows"
	FieldCacheHit   = "cache_hit"
	FieldTemplate   = "template"

	FieldExchange    = "exchange"
	FieldRoutingKey  = "routing_key"
	FieldBindingKey  = "binding_key"
	FieldQueue       = "queue"
	FieldAttempt     = "attempt"
	FieldRedelivered = "redelivered"
)

const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentViewModel = "viewmodel"
	ComponentEvents    = "events"
	ComponentCache     = "cache"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
	ComponentTemplate  = "template"
	ComponentCLI       = "cli"
)

const (
	OpResolve  = "resolve"
	OpRender   = "render"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields builds slog key/value pairs in insertion order. Setting a key
// twice keeps the first position and the last value. The zero value is
// ready to use.
type LogFields []any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields, 0, 8)
}

func (f LogFields) set(key string, value any) LogFields {
	for i := 0; i+1 < len(f); i += 2 {
		if f[i] == key {
			f[i+1] = value
			return f
		}
	}
	return append(f, key, value)
}

func (f LogFields) WithComponent(component string) LogFields {
	return f.set(FieldComponent, component)
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	return f.set(FieldRequestID, requestID)
}

func (f LogFields) WithClientIP(ip string) LogFields {
	return f.set(FieldClientIP, ip)
}

// WithError records err's message; a nil error adds nothing.
func (f LogFields) WithError(err error) LogFields {
	if err == nil {
		return f
	}
	return f.set(FieldError, err.Error())
}

func (f LogFields) WithOperation(op string) LogFields {
	return f.set(FieldOperation, op)
}

// WithView adds the selection, chart kind and row count of a resolved view.
func (f LogFields) WithView(selection, chart string, rows int) LogFields {
	return f.set(FieldSelection, selection).set(FieldChartKind, chart).set(FieldRows, rows)
}

func (f LogFields) WithTemplate(name string) LogFields {
	return f.set(FieldTemplate, name)
}

func (f LogFields) WithHTTPRequest(method, path, query string) LogFields {
	f = f.set(FieldMethod, method).set(FieldPath, path)
	if query != "" {
		f = f.set(FieldQuery, query)
	}
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	return f.set(FieldStatusCode, statusCode).
		set(FieldDuration, durationMs).
		set(FieldSuccess, statusCode < 400)
}

// ToSlice returns the pairs for a slog call.
func (f LogFields) ToSlice() []any {
	return []any(f)
}
