package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nutridesk/server/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:                8080,
		PlanMaxDurationDays: 90,
		PlanMaxMealTypes:    12,
		PlanMaxOptions:      10,
		DraftTTLHours:       24,
		CatalogPageSize:     20,
	}
}

func TestHealthz(t *testing.T) {
	srv := New(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("expected status=ok, got %s", resp["status"])
	}
}

func TestHealthzMethodNotAllowed(t *testing.T) {
	srv := New(testConfig())

	req := httptest.NewRequest(http.MethodPost, "/healthz", nil)
	w := httptest.NewRecorder()

	srv.mux.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestClientPlanRoundTrip(t *testing.T) {
	srv := New(testConfig())

	// create a client
	req := httptest.NewRequest(http.MethodPost, "/v1/clients",
		strings.NewReader(`{"name":"Anna Smith"}`))
	w := httptest.NewRecorder()
	srv.mux.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create client: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var client struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(w.Body).Decode(&client); err != nil {
		t.Fatalf("decode client: %v", err)
	}

	// save a plan for the client
	req = httptest.NewRequest(http.MethodPut, "/v1/plans/replace",
		strings.NewReader(`{"client_id":"`+client.ID+`","duration_days":7,"start_date":"2026-03-02"}`))
	w = httptest.NewRecorder()
	srv.mux.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("replace plan: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// read it back
	req = httptest.NewRequest(http.MethodGet, "/v1/plans?client_id="+client.ID, nil)
	w = httptest.NewRecorder()
	srv.mux.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get plan: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var plan struct {
		DurationDays int `json:"duration_days"`
		Days         []struct {
			ID string `json:"id"`
		} `json:"days"`
	}
	if err := json.NewDecoder(w.Body).Decode(&plan); err != nil {
		t.Fatalf("decode plan: %v", err)
	}
	if plan.DurationDays != 7 || len(plan.Days) != 7 {
		t.Fatalf("expected a 7-day plan, got duration=%d days=%d", plan.DurationDays, len(plan.Days))
	}
}

func TestReplacePlanClearsDraft(t *testing.T) {
	srv := New(testConfig())

	// park a draft for the new-plan session
	req := httptest.NewRequest(http.MethodPut, "/v1/drafts?client_id=c1&duration_days=7",
		strings.NewReader(`{"client_id":"c1","duration_days":7,"payload":{"client_id":"c1","duration_days":7}}`))
	w := httptest.NewRecorder()
	srv.mux.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("save draft: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// explicit save drops the matching draft
	req = httptest.NewRequest(http.MethodPut, "/v1/plans/replace",
		strings.NewReader(`{"client_id":"c1","duration_days":7,"start_date":"2026-03-02"}`))
	w = httptest.NewRecorder()
	srv.mux.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("replace plan: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/drafts?client_id=c1&duration_days=7", nil)
	w = httptest.NewRecorder()
	srv.mux.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected draft gone after save, got %d: %s", w.Code, w.Body.String())
	}
}

func TestJournalSummaryRouteBeatsKindWildcard(t *testing.T) {
	srv := New(testConfig())

	req := httptest.NewRequest(http.MethodGet, "/v1/journal/summary?client_id=c1&date=2026-03-02", nil)
	w := httptest.NewRecorder()
	srv.mux.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("journal summary: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if _, ok := resp["water"]; !ok {
		t.Fatalf("expected a water section in the summary, got %v", resp)
	}
}
