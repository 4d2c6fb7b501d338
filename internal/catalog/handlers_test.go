package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nutridesk/server/internal/config"
	"github.com/nutridesk/server/internal/storage"
	"github.com/nutridesk/server/internal/storage/memory"
)

func newTestHandlers(t *testing.T) (*Handlers, *memory.MemoryStorage) {
	t.Helper()
	store := memory.New()
	cfg := &config.Config{CatalogPageSize: 20, CatalogMaxItems: 2000}
	return NewHandlers(NewService(store, store, cfg)), store
}

func createRecipe(t *testing.T, h *Handlers, req UpsertRequest) storage.Recipe {
	t.Helper()
	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(req)
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, httptest.NewRequest(http.MethodPost, "/v1/recipes", &buf))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create recipe: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var r storage.Recipe
	if err := json.NewDecoder(rec.Body).Decode(&r); err != nil {
		t.Fatalf("decode recipe: %v", err)
	}
	return r
}

func search(t *testing.T, h *Handlers, target string) SearchResponse {
	t.Helper()
	rec := httptest.NewRecorder()
	h.HandleSearch(rec, httptest.NewRequest(http.MethodGet, target, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("search: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp SearchResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	return resp
}

func TestSearchRanksResults(t *testing.T) {
	h, _ := newTestHandlers(t)
	createRecipe(t, h, UpsertRequest{Name: "Fried Rice"})
	createRecipe(t, h, UpsertRequest{Name: "Rice"})
	createRecipe(t, h, UpsertRequest{Name: "Oatmeal"})

	resp := search(t, h, "/v1/recipes?search=rice")
	if resp.Total != 2 {
		t.Fatalf("total = %d", resp.Total)
	}
	if resp.Recipes[0].Name != "Rice" {
		t.Errorf("exact match not ranked first: %s", resp.Recipes[0].Name)
	}
}

func TestSearchFiltersForClient(t *testing.T) {
	h, store := newTestHandlers(t)
	createRecipe(t, h, UpsertRequest{Name: "Peanut Bars", Allergens: []string{"peanuts"}})
	createRecipe(t, h, UpsertRequest{Name: "Peanut-Free Bars"})

	client, err := store.CreateClient(context.Background(), storage.Client{
		Owner:     "default",
		Name:      "Anna",
		Allergies: []string{"peanuts"},
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}

	resp := search(t, h, "/v1/recipes?search=bars&client_id="+client.ID)
	if resp.Total != 1 {
		t.Fatalf("total = %d, want allergen-filtered result", resp.Total)
	}
	if resp.Recipes[0].Name != "Peanut-Free Bars" {
		t.Errorf("wrong recipe kept: %s", resp.Recipes[0].Name)
	}
	if len(resp.Excluded) != 1 {
		t.Errorf("excluded = %+v", resp.Excluded)
	}
}

func TestSearchFiltersByCategory(t *testing.T) {
	h, _ := newTestHandlers(t)
	createRecipe(t, h, UpsertRequest{Name: "Rice Porridge", Category: "breakfast"})
	createRecipe(t, h, UpsertRequest{Name: "Rice Bowl", Category: "lunch"})

	resp := search(t, h, "/v1/recipes?search=rice&category=breakfast")
	if resp.Total != 1 {
		t.Fatalf("total = %d, want category-filtered result", resp.Total)
	}
	if resp.Recipes[0].Name != "Rice Porridge" {
		t.Errorf("wrong recipe kept: %s", resp.Recipes[0].Name)
	}

	// Category alone narrows the unranked listing too.
	resp = search(t, h, "/v1/recipes?category=lunch")
	if resp.Total != 1 || resp.Recipes[0].Name != "Rice Bowl" {
		t.Errorf("category-only listing = %+v", resp.Recipes)
	}
}

func TestSearchPagination(t *testing.T) {
	h, _ := newTestHandlers(t)
	for _, name := range []string{"Rice", "Rice Bowl", "Rice Cakes"} {
		createRecipe(t, h, UpsertRequest{Name: name})
	}

	resp := search(t, h, "/v1/recipes?search=rice&limit=2&offset=2")
	if resp.Total != 3 {
		t.Errorf("total = %d, must count the full ranked set", resp.Total)
	}
	if len(resp.Recipes) != 1 {
		t.Errorf("page size = %d", len(resp.Recipes))
	}
}

func TestCreateRecipeValidation(t *testing.T) {
	h, _ := newTestHandlers(t)
	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(UpsertRequest{Name: "Bad", Cal: -10})
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, httptest.NewRequest(http.MethodPost, "/v1/recipes", &buf))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for negative cal, got %d", rec.Code)
	}
}

func TestUpdateAndDeleteRecipe(t *testing.T) {
	h, _ := newTestHandlers(t)
	created := createRecipe(t, h, UpsertRequest{Name: "Draft Dish"})

	var buf bytes.Buffer
	json.NewEncoder(&buf).Encode(UpsertRequest{Name: "Final Dish", Cal: 250})
	req := httptest.NewRequest(http.MethodPut, "/v1/recipes/"+created.ID, &buf)
	req.SetPathValue("id", created.ID)
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/v1/recipes/"+created.ID, nil)
	req.SetPathValue("id", created.ID)
	rec = httptest.NewRecorder()
	h.HandleDelete(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/recipes/"+created.ID, nil)
	req.SetPathValue("id", created.ID)
	rec = httptest.NewRecorder()
	h.HandleGet(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", rec.Code)
	}
}
