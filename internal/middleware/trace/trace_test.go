package trace

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	applog "mbtidash/internal/log"
	"mbtidash/internal/metrics"
)

func newTraced(t *testing.T, buf *bytes.Buffer) (http.Handler, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	rec, err := metrics.New(reg)
	require.NoError(t, err)

	logger := applog.New(applog.Config{Output: buf, Component: applog.ComponentHTTP})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(GetRequestID(r.Context())))
	})
	mux.HandleFunc("GET /bad", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	})

	mw := NewMiddleware(func(*http.Request) string { return "203.0.113.1" }, logger, rec)
	return mw.Middleware(mux), reg
}

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	h, _ := newTraced(t, &buf)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ok", nil))

	id := rr.Header().Get(RequestIDHeader)
	assert.True(t, strings.HasPrefix(id, "req_"))
	assert.Equal(t, id, rr.Body.String(), "handler sees the same ID through the context")
	assert.Contains(t, buf.String(), "HTTP request completed")
	assert.Contains(t, buf.String(), "client_ip=203.0.113.1")
}

func TestMiddlewareHonoursIncomingRequestID(t *testing.T) {
	var buf bytes.Buffer
	h, _ := newTraced(t, &buf)

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"well formed", "abc-123", true},
		{"contains spaces", "abc 123", false},
		{"too long", strings.Repeat("a", 65), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ok", nil)
			req.Header.Set(RequestIDHeader, tt.incoming)
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if tt.keep {
				assert.Equal(t, tt.incoming, rr.Header().Get(RequestIDHeader))
			} else {
				assert.NotEqual(t, tt.incoming, rr.Header().Get(RequestIDHeader))
			}
		})
	}
}

func TestMiddlewareRecordsMetrics(t *testing.T) {
	var buf bytes.Buffer
	h, reg := newTraced(t, &buf)

	for _, path := range []string{"/ok", "/bad", "/missing"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	expected := `
# HELP mbtidash_http_requests_total HTTP requests by route and status code.
# TYPE mbtidash_http_requests_total counter
mbtidash_http_requests_total{code="200",route="GET /ok"} 1
mbtidash_http_requests_total{code="400",route="GET /bad"} 1
mbtidash_http_requests_total{code="404",route="unmatched"} 1
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "mbtidash_http_requests_total")
	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestGetRequestIDMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, GetRequestID(req.Context()))
}
