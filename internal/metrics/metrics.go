// Package metrics exports dashboard counters to Prometheus.
package metrics

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mbtidash"

// Outcomes for resolve calls.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid_selection"
)

// Recorder holds the dashboard collectors.
type Recorder struct {
	gatherer prometheus.Gatherer

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	resolves        *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	events          *prometheus.CounterVec
	rateLimited     prometheus.Counter
}

// New registers the collectors on reg. A nil reg uses a fresh registry.
func New(reg *prometheus.Registry) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	r := &Recorder{
		gatherer: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		resolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_resolves_total",
			Help:      "View resolutions by chart kind and outcome.",
		}, []string{"chart", "outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_cache_lookups_total",
			Help:      "Rendered view cache lookups by result.",
		}, []string{"result"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Selection events published by outcome.",
		}, []string{"outcome"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_requests_total",
			Help:      "Requests rejected by the per-client rate limiter.",
		}),
	}

	for _, c := range []prometheus.Collector{
		r.requests, r.requestDuration, r.resolves, r.cacheLookups, r.events, r.rateLimited,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return r, nil
}

// ObserveRequest records one served request.
func (r *Recorder) ObserveRequest(route string, code int, d time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	r.requestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// ObserveResolve records a view resolution. chart is empty on failure.
func (r *Recorder) ObserveResolve(chart, outcome string) {
	if r == nil {
		return
	}
	if chart == "" {
		chart = "none"
	}
	r.resolves.WithLabelValues(chart, outcome).Inc()
}

// ObserveCache records a view cache lookup.
func (r *Recorder) ObserveCache(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveEvent records a publish attempt.
func (r *Recorder) ObserveEvent(err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.events.WithLabelValues(outcome).Inc()
}

// ObserveRateLimited records a rejected request.
func (r *Recorder) ObserveRateLimited() {
	if r == nil {
		return
	}
	r.rateLimited.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
