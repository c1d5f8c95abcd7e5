package handlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"studioflow/auth"
	"studioflow/logging"
)

func TestSecurityHeadersMiddleware(t *testing.T) {
	// Create a dummy handler that the middleware will wrap
	dummyHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	middleware := SecurityHeadersMiddleware(dummyHandler)

	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()
	middleware.ServeHTTP(rr, req)

	expectedHeaders := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "SAMEORIGIN",
		"X-XSS-Protection":       "1; mode=block",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}

	for key, expectedValue := range expectedHeaders {
		if value := rr.Header().Get(key); value != expectedValue {
			t.Errorf("Header %s: expected %s, got %s", key, expectedValue, value)
		}
	}

	csp := rr.Header().Get("Content-Security-Policy")
	if csp == "" {
		t.Error("Expected Content-Security-Policy header, got empty")
	}

	expectedDirectives := []string{
		"default-src 'self'",
		"script-src 'self'",
		"style-src 'self' https://cdn.jsdelivr.net",
		"form-action 'self'",
	}

	for _, directive := range expectedDirectives {
		if !strings.Contains(csp, directive) {
			t.Errorf("CSP missing directive: %s. Got: %s", directive, csp)
		}
	}
	if strings.Contains(csp, "unsafe-inline") {
		t.Errorf("CSP must not allow inline code. Got: %s", csp)
	}

	if rr.Code != http.StatusOK {
		t.Errorf("Expected status OK, got %v", rr.Code)
	}
}

func TestRequireLogin(t *testing.T) {
	var seen *auth.CurrentUser
	protected := RequireLogin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = auth.UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	protected.ServeHTTP(rr, httptest.NewRequest("GET", "/clients", nil))
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/login" {
		t.Errorf("Expected redirect to /login, got %d %q", rr.Code, rr.Header().Get("Location"))
	}

	login := httptest.NewRecorder()
	if err := auth.SetSession(login, httptest.NewRequest("GET", "/", nil), 9, "dora"); err != nil {
		t.Fatalf("SetSession: %v", err)
	}
	req := httptest.NewRequest("GET", "/clients", nil)
	for _, c := range login.Result().Cookies() {
		req.AddCookie(c)
	}
	rr = httptest.NewRecorder()
	protected.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200 with a session, got %d", rr.Code)
	}
	if seen == nil || seen.ID != 9 || seen.Username != "dora" {
		t.Errorf("Expected user 9/dora on the context, got %+v", seen)
	}
}

func TestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(&buf, slog.LevelInfo)

	var ctxID string
	handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/clients", nil))

	id := rr.Header().Get("X-Request-ID")
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("Expected a UUID request id, got %q", id)
	}
	if ctxID != id {
		t.Errorf("Expected context id %q, got %q", id, ctxID)
	}
	out := buf.String()
	if !strings.Contains(out, "/clients") || !strings.Contains(out, "418") || !strings.Contains(out, id) {
		t.Errorf("Expected path, status and id in log line, got %q", out)
	}

	incoming := uuid.NewString()
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", incoming)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Header().Get("X-Request-ID") != incoming {
		t.Error("Expected a well-formed incoming request id to be kept")
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Request-ID", "<script>")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Header().Get("X-Request-ID") == "<script>" {
		t.Error("Expected a malformed incoming request id to be replaced")
	}
}
