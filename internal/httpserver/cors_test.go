package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nutridesk/server/internal/config"
)

func corsTestHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestCORSAllowedOrigin(t *testing.T) {
	cfg := &config.Config{
		CORSAllowedOrigins: []string{"http://localhost:3000"},
	}
	handler := CORSMiddleware(cfg, corsTestHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/clients", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("expected allow-origin echo, got %q", got)
	}
	if w.Header().Get("Vary") != "Origin" {
		t.Error("expected Vary: Origin")
	}
}

func TestCORSDisallowedOrigin(t *testing.T) {
	cfg := &config.Config{
		CORSAllowedOrigins: []string{"http://localhost:3000"},
	}
	handler := CORSMiddleware(cfg, corsTestHandler())

	req := httptest.NewRequest(http.MethodGet, "/v1/clients", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no allow-origin header, got %q", got)
	}
	if w.Code != http.StatusOK {
		t.Errorf("request should still pass through, got %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	cfg := &config.Config{
		CORSAllowedOrigins:   []string{"http://localhost:3000"},
		CORSAllowCredentials: true,
	}
	handler := CORSMiddleware(cfg, corsTestHandler())

	req := httptest.NewRequest(http.MethodOptions, "/v1/plans/replace", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("expected allow-methods on preflight")
	}
	if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Error("expected allow-credentials")
	}
}

func TestCORSPreflightDisallowedOrigin(t *testing.T) {
	cfg := &config.Config{
		CORSAllowedOrigins: []string{"http://localhost:3000"},
	}
	handler := CORSMiddleware(cfg, corsTestHandler())

	req := httptest.NewRequest(http.MethodOptions, "/v1/plans/replace", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Methods") != "" {
		t.Error("disallowed origin must not receive CORS headers")
	}
}
