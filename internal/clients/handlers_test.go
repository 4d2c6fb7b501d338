package clients

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nutridesk/server/internal/storage"
	"github.com/nutridesk/server/internal/storage/memory"
)

func newTestHandlers() *Handlers {
	return NewHandlers(NewService(memory.New()))
}

func postClient(t *testing.T, h *Handlers, req UpsertRequest) storage.Client {
	t.Helper()
	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(req)
	r := httptest.NewRequest(http.MethodPost, "/v1/clients", &buf)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, r)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var c storage.Client
	if err := json.NewDecoder(rec.Body).Decode(&c); err != nil {
		t.Fatalf("decode client: %v", err)
	}
	return c
}

func TestCreateAndGetClient(t *testing.T) {
	h := newTestHandlers()
	created := postClient(t, h, UpsertRequest{
		Name:      "Anna Petrova",
		Allergies: []string{"peanuts", "  ", "shellfish"},
	})
	if created.ID == "" {
		t.Fatal("missing ID")
	}
	if len(created.Allergies) != 2 {
		t.Errorf("blank tags not filtered: %v", created.Allergies)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/clients/"+created.ID, nil)
	req.SetPathValue("id", created.ID)
	rec := httptest.NewRecorder()
	h.HandleGet(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: expected 200, got %d", rec.Code)
	}
}

func TestCreateClientRequiresName(t *testing.T) {
	h := newTestHandlers()
	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(UpsertRequest{Name: "   "})
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, httptest.NewRequest(http.MethodPost, "/v1/clients", &buf))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestListClientsSorted(t *testing.T) {
	h := newTestHandlers()
	postClient(t, h, UpsertRequest{Name: "Zoe"})
	postClient(t, h, UpsertRequest{Name: "Adam"})

	rec := httptest.NewRecorder()
	h.HandleList(rec, httptest.NewRequest(http.MethodGet, "/v1/clients", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}

	var resp struct {
		Clients []storage.Client `json:"clients"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(resp.Clients) != 2 || resp.Clients[0].Name != "Adam" {
		t.Errorf("unexpected list: %+v", resp.Clients)
	}
}

func TestUpdateMissingClientReturns404(t *testing.T) {
	h := newTestHandlers()
	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(UpsertRequest{Name: "Ghost"})
	req := httptest.NewRequest(http.MethodPut, "/v1/clients/none", &buf)
	req.SetPathValue("id", "none")
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestDeleteClient(t *testing.T) {
	h := newTestHandlers()
	created := postClient(t, h, UpsertRequest{Name: "Temp"})

	req := httptest.NewRequest(http.MethodDelete, "/v1/clients/"+created.ID, nil)
	req.SetPathValue("id", created.ID)
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/clients/"+created.ID, nil)
	req.SetPathValue("id", created.ID)
	rec = httptest.NewRecorder()
	h.HandleGet(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}
