package clients

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/nutridesk/server/internal/storage"
	"github.com/nutridesk/server/internal/userctx"
)

type Handlers struct {
	service *Service
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

func serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Client not found")
	case strings.HasPrefix(err.Error(), "validation failed: "):
		writeError(w, http.StatusBadRequest, "invalid_request", strings.TrimPrefix(err.Error(), "validation failed: "))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

// HandleCreate handles POST /v1/clients
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	c, err := h.service.Create(r.Context(), userctx.OwnerOrDefault(r.Context()), &req)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// HandleList handles GET /v1/clients
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), userctx.OwnerOrDefault(r.Context()))
	if err != nil {
		serviceError(w, err)
		return
	}
	if list == nil {
		list = []storage.Client{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"clients": list})
}

// HandleGet handles GET /v1/clients/{id}
func (h *Handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), userctx.OwnerOrDefault(r.Context()), r.PathValue("id"))
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleUpdate handles PUT /v1/clients/{id}
func (h *Handlers) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	c, err := h.service.Update(r.Context(), userctx.OwnerOrDefault(r.Context()), r.PathValue("id"), &req)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleDelete handles DELETE /v1/clients/{id}
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), userctx.OwnerOrDefault(r.Context()), r.PathValue("id")); err != nil {
		serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
