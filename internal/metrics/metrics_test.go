package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounters(t *testing.T) {
	r, err := New(nil)
	require.NoError(t, err)

	r.ObserveRequest("/ui/view", 200, 3*time.Millisecond)
	r.ObserveRequest("/ui/view", 200, time.Millisecond)
	r.ObserveRequest("/ui/view", 400, time.Millisecond)
	r.ObserveResolve("pie", OutcomeOK)
	r.ObserveResolve("", OutcomeInvalid)
	r.ObserveCache(true)
	r.ObserveCache(false)
	r.ObserveCache(false)
	r.ObserveEvent(nil)
	r.ObserveEvent(errors.New("down"))
	r.ObserveRateLimited()

	assert.Equal(t, 2.0, testutil.ToFloat64(r.requests.WithLabelValues("/ui/view", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.requests.WithLabelValues("/ui/view", "400")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.resolves.WithLabelValues("pie", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.resolves.WithLabelValues("none", OutcomeInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.events.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.rateLimited))
}

func TestRecorderNilSafe(t *testing.T) {
	var r *Recorder
	r.ObserveRequest("/", 200, time.Millisecond)
	r.ObserveResolve("bar", OutcomeOK)
	r.ObserveCache(true)
	r.ObserveEvent(nil)
	r.ObserveRateLimited()
}

func TestRecorderDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)
	_, err = New(reg)
	assert.Error(t, err)
}

func TestHandlerExposesMetrics(t *testing.T) {
	r, err := New(nil)
	require.NoError(t, err)
	r.ObserveResolve("bar", OutcomeOK)

	rr := httptest.NewRecorder()
	r.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `mbtidash_view_resolves_total{chart="bar",outcome="ok"} 1`)
}
