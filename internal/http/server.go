// Package http serves the dashboard page, its HTMX partials and a JSON API.

package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"mbtidash/internal/amqp"
	"mbtidash/internal/cache"
	"mbtidash/internal/core"
	applog "mbtidash/internal/log"
	"mbtidash/internal/metrics"
	"mbtidash/internal/middleware/ratelimit"
	"mbtidash/internal/middleware/security"
	"mbtidash/internal/middleware/trace"
	appweb "mbtidash/web"
)

const (
	defaultViewCacheSize = 32
	defaultViewCacheTTL  = time.Hour
	cacheCleanupInterval = 10 * time.Minute
	staticMaxAge         = 3600
)

// Options wires the server's collaborators. Only ViewModel is required.
type Options struct {
	Addr      string
	ViewModel *core.ViewModel
	Logger    *applog.Logger

	// Recorder enables /metrics and request instrumentation when set.
	Recorder *metrics.Recorder

	// Publisher receives an event per resolved view. Nil disables events.
	Publisher amqp.Publisher

	ViewCacheSize int
	ViewCacheTTL  time.Duration

	// RateLimitRPM is requests per minute per client; 0 disables limiting.
	RateLimitRPM int
}

// Server is the dashboard HTTP server.
type Server struct {
	http.Server

	templates  *template.Template
	vm         *core.ViewModel
	logger     *applog.Logger
	structured *applog.StructuredLogger
	recorder   *metrics.Recorder
	publisher  amqp.Publisher
	events     bool

	viewCache    *cache.LRUCache[[]byte]
	cacheManager *cache.Manager
	rateLimiter  *ratelimit.Limiter
	clientIP     *security.ClientIPResolver

	started      time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes, middleware and templates, returning a
// ready-to-run server.
func NewServer(opts Options) (*Server, error) {
	if opts.ViewModel == nil {
		return nil, errors.New("http: view model is required")
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.ViewCacheSize <= 0 {
		opts.ViewCacheSize = defaultViewCacheSize
	}
	if opts.ViewCacheTTL <= 0 {
		opts.ViewCacheTTL = defaultViewCacheTTL
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	logger := opts.Logger.WithComponent(applog.ComponentHTTP)
	s := &Server{
		templates:  t,
		vm:         opts.ViewModel,
		logger:     logger,
		structured: applog.NewStructuredLogger(logger),
		recorder:   opts.Recorder,
		publisher:  opts.Publisher,
		events:     opts.Publisher != nil,
		viewCache:  cache.NewLRUCache[[]byte](opts.ViewCacheSize, opts.ViewCacheTTL),
		clientIP:   security.NewClientIPResolver(),
		started:    time.Now(),
	}
	if s.publisher == nil {
		s.publisher = amqp.NoopPublisher{}
	}

	s.cacheManager = cache.NewManager(opts.Logger.WithComponent(applog.ComponentCache).Logger)
	s.cacheManager.Register(s.viewCache)
	s.cacheManager.StartCleanup(cacheCleanupInterval)

	if opts.RateLimitRPM > 0 {
		s.rateLimiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitRPM})
	}

	mux := http.NewServeMux()
	if err := s.routes(mux); err != nil {
		s.cacheManager.Stop()
		s.stopLimiter()
		return nil, err
	}

	traced := trace.NewMiddleware(s.clientIP.ClientIP, opts.Logger, s.recorder)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           headers.Middleware(traced.Middleware(mux)),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}
	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) error {
	sub, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return fmt.Errorf("mount static assets: %w", err)
	}
	static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
	mux.Handle("GET /static/", security.StaticAssetMiddleware(staticMaxAge)(static))

	mux.Handle("GET /{$}", s.limited(s.handleIndex))
	mux.Handle("GET /ui/view", s.limited(s.handleViewPartial))
	mux.Handle("GET /api/categories", s.limited(s.handleAPICategories))
	mux.Handle("GET /api/view", s.limited(s.handleAPIView))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	if s.recorder != nil {
		mux.Handle("GET /metrics", s.recorder.Handler())
	}
	return nil
}

// limited applies per-client rate limiting when it is enabled.
func (s *Server) limited(h http.HandlerFunc) http.Handler {
	if s.rateLimiter == nil {
		return h
	}
	onLimit := func(r *http.Request) {
		s.recorder.ObserveRateLimited()
		s.log(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			applog.NewFields().
				WithClientIP(s.clientIP.ClientIP(r)).
				WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery).
				WithComponent(applog.ComponentRateLimit).
				ToSlice()...)
	}
	return s.rateLimiter.Middleware(s.clientIP.ClientIP, onLimit)(h)
}

func (s *Server) stopLimiter() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.stopLimiter()
		shutdownErr = s.Server.Shutdown(ctx)
		s.logger.InfoContext(ctx, "HTTP server stopped", applog.FieldOperation, applog.OpShutdown)
	})
	return shutdownErr
}
