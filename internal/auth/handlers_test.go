package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nutridesk/server/internal/config"
	"github.com/nutridesk/server/internal/userctx"
)

func testConfig() *config.Config {
	return &config.Config{
		AuthRequired:  true,
		JWTSecret:     "test-secret",
		JWTIssuer:     "nutridesk",
		JWTTTLMinutes: 60,
	}
}

func TestDevAuthIssuesVerifiableToken(t *testing.T) {
	svc := NewService(testConfig())
	h := NewHandlers(svc)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/dev", nil)
	rec := httptest.NewRecorder()
	h.HandleDevAuth(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp DevAuthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TokenType != "Bearer" {
		t.Errorf("expected Bearer token type, got %s", resp.TokenType)
	}

	sub, err := svc.VerifyJWT(resp.AccessToken)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if sub != "dev-user" {
		t.Errorf("expected dev-user subject, got %s", sub)
	}
}

func TestVerifyJWTRejectsGarbage(t *testing.T) {
	svc := NewService(testConfig())
	if _, err := svc.VerifyJWT("not-a-token"); err == nil {
		t.Error("expected error for malformed token")
	}
}

func TestVerifyJWTRejectsWrongSecret(t *testing.T) {
	svc := NewService(testConfig())
	other := NewService(&config.Config{JWTSecret: "different", JWTIssuer: "nutridesk", JWTTTLMinutes: 60})

	token, err := other.generateJWT("someone")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	if _, err := svc.VerifyJWT(token); err == nil {
		t.Error("expected error for token signed with another secret")
	}
}

func TestRequireAuthBlocksWithoutToken(t *testing.T) {
	cfg := testConfig()
	mw := NewMiddleware(cfg, NewService(cfg))

	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/clients", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuthPassesPublicPaths(t *testing.T) {
	cfg := testConfig()
	mw := NewMiddleware(cfg, NewService(cfg))

	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for _, path := range []string{"/healthz", "/v1/auth/dev"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("path %s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestRequireAuthSetsUserContext(t *testing.T) {
	cfg := testConfig()
	svc := NewService(cfg)
	mw := NewMiddleware(cfg, svc)

	token, err := svc.generateJWT("user-42")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var gotUser string
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = userctx.GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/clients", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotUser != "user-42" {
		t.Errorf("expected user-42 in context, got %q", gotUser)
	}
}
