package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// =============================================================================
// Security Headers Middleware Tests
// =============================================================================

func securityHeaders(isSecure bool, imageHosts ...string) http.Header {
	mw := NewSecurityHeadersMiddleware(isSecure, imageHosts...)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	mw.Handler(handler).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	return rec.Header()
}

func TestSecurityHeadersMiddleware_SetsAllHeaders(t *testing.T) {
	h := securityHeaders(false)

	expected := map[string]string{
		"X-Frame-Options":        "DENY",
		"X-Content-Type-Options": "nosniff",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
		"Permissions-Policy":     "geolocation=(), microphone=(), camera=()",
	}
	for header, want := range expected {
		if got := h.Get(header); got != want {
			t.Errorf("%s: expected %q, got %q", header, want, got)
		}
	}
}

func TestSecurityHeadersMiddleware_HSTS(t *testing.T) {
	if got := securityHeaders(true).Get("Strict-Transport-Security"); !strings.Contains(got, "max-age=31536000") {
		t.Errorf("expected HSTS in production, got %q", got)
	}
	if got := securityHeaders(false).Get("Strict-Transport-Security"); got != "" {
		t.Errorf("expected no HSTS in development, got %q", got)
	}
}

func TestSecurityHeadersMiddleware_CSP(t *testing.T) {
	csp := securityHeaders(false, "https://cdn.sanity.io").Get("Content-Security-Policy")

	for _, want := range []string{
		"default-src 'self'",
		"https://unpkg.com",
		"https://cdn.tailwindcss.com",
		"'unsafe-eval'",
		"style-src 'self' 'unsafe-inline'",
		"img-src 'self' data: https://cdn.sanity.io",
		"frame-ancestors 'none'",
		"manifest-src 'self'",
	} {
		if !strings.Contains(csp, want) {
			t.Errorf("CSP should contain %q, got %q", want, csp)
		}
	}
}

func TestSecurityHeadersMiddleware_CSPWithoutImageHosts(t *testing.T) {
	csp := securityHeaders(false).Get("Content-Security-Policy")

	if !strings.Contains(csp, "img-src 'self' data:;") {
		t.Errorf("img-src should only allow self and data URIs, got %q", csp)
	}
}
