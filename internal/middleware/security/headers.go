package security

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HeadersConfig lists the response headers every page gets. Empty values
// are skipped.
type HeadersConfig struct {
	// CSP directives, joined with "; ".
	CSP []string

	// HSTS is only sent over TLS.
	HSTSMaxAge            time.Duration
	HSTSIncludeSubdomains bool

	FrameOptions       string
	ContentTypeOptions string
	ReferrerPolicy     string
	PermissionsPolicy  string
	OpenerPolicy       string
	ResourcePolicy     string
}

// DefaultHeadersConfig fits the dashboard: charts are inline SVG, styles
// are inline, and the only foreign script is htmx from unpkg.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP: []string{
			"default-src 'self'",
			"script-src 'self' https://unpkg.com",
			"style-src 'self' 'unsafe-inline'",
			"img-src 'self' data:",
			"connect-src 'self'",
			"object-src 'none'",
			"frame-ancestors 'none'",
			"base-uri 'self'",
			"form-action 'self'",
		},
		HSTSMaxAge:            365 * 24 * time.Hour,
		HSTSIncludeSubdomains: true,
		FrameOptions:          "DENY",
		ContentTypeOptions:    "nosniff",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		PermissionsPolicy:     "geolocation=(), microphone=(), camera=(), payment=()",
		OpenerPolicy:          "same-origin",
		ResourcePolicy:        "same-origin",
	}
}

// HeadersMiddleware writes a precomputed header set on every response.
type HeadersMiddleware struct {
	always http.Header
	hsts   string
}

func NewHeadersMiddleware(config HeadersConfig) *HeadersMiddleware {
	always := http.Header{}
	for name, value := range map[string]string{
		"Content-Security-Policy":      strings.Join(config.CSP, "; "),
		"X-Frame-Options":              config.FrameOptions,
		"X-Content-Type-Options":       config.ContentTypeOptions,
		"Referrer-Policy":              config.ReferrerPolicy,
		"Permissions-Policy":           config.PermissionsPolicy,
		"Cross-Origin-Opener-Policy":   config.OpenerPolicy,
		"Cross-Origin-Resource-Policy": config.ResourcePolicy,
	} {
		if value != "" {
			always.Set(name, value)
		}
	}

	m := &HeadersMiddleware{always: always}
	if secs := int64(config.HSTSMaxAge / time.Second); secs > 0 {
		m.hsts = fmt.Sprintf("max-age=%d", secs)
		if config.HSTSIncludeSubdomains {
			m.hsts += "; includeSubDomains"
		}
	}
	return m
}

func (m *HeadersMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for name, values := range m.always {
			h[name] = values
		}
		if r.TLS != nil && m.hsts != "" {
			h.Set("Strict-Transport-Security", m.hsts)
		}
		next.ServeHTTP(w, r)
	})
}

// StaticAssetMiddleware marks embedded assets cacheable for maxAge seconds.
func StaticAssetMiddleware(maxAge int) func(http.Handler) http.Handler {
	value := fmt.Sprintf("public, max-age=%d, immutable", maxAge)
	return func(next http.Handler) http.Handler {
		if maxAge <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", value)
			next.ServeHTTP(w, r)
		})
	}
}
