package dietplan

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
		writeError(w, http.StatusNotFound, "not_found", "Plan not found")
	case strings.HasPrefix(err.Error(), "validation failed: "):
		writeError(w, http.StatusBadRequest, "invalid_request", strings.TrimPrefix(err.Error(), "validation failed: "))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

// HandleGet handles GET /v1/plans?client_id=
func (h *Handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "client_id is required")
		return
	}

	resp, err := h.service.Get(r.Context(), userctx.OwnerOrDefault(r.Context()), clientID)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleReplace handles PUT /v1/plans/replace
func (h *Handlers) HandleReplace(w http.ResponseWriter, r *http.Request) {
	var req ReplacePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	resp, err := h.service.Replace(r.Context(), userctx.OwnerOrDefault(r.Context()), &req)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleDelete handles DELETE /v1/plans?client_id=
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "client_id is required")
		return
	}

	if err := h.service.Delete(r.Context(), userctx.OwnerOrDefault(r.Context()), clientID); err != nil {
		serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleApplyOp handles POST /v1/plans/ops
func (h *Handlers) HandleApplyOp(w http.ResponseWriter, r *http.Request) {
	var req ApplyOpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	resp, err := h.service.ApplyOp(r.Context(), userctx.OwnerOrDefault(r.Context()), &req)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
