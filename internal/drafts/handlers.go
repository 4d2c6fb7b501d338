package drafts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
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

func draftParams(r *http.Request) (clientID string, duration int, ok bool) {
	clientID = r.URL.Query().Get("client_id")
	duration, err := strconv.Atoi(r.URL.Query().Get("duration_days"))
	if err != nil || duration < 1 {
		return "", 0, false
	}
	return clientID, duration, true
}

// HandleSave handles PUT /v1/drafts
func (h *Handlers) HandleSave(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	key, err := h.service.Save(r.Context(), userctx.OwnerOrDefault(r.Context()), &req)
	if err != nil {
		if strings.HasPrefix(err.Error(), "validation failed: ") {
			writeError(w, http.StatusBadRequest, "invalid_request", strings.TrimPrefix(err.Error(), "validation failed: "))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"key": key})
}

// HandleGet handles GET /v1/drafts?client_id=&duration_days=
func (h *Handlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	clientID, duration, ok := draftParams(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", "duration_days is required")
		return
	}

	resp, err := h.service.Get(r.Context(), userctx.OwnerOrDefault(r.Context()), clientID, duration)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, ErrExpired) {
			writeError(w, http.StatusNotFound, "not_found", "No draft available")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// HandleDiscard handles DELETE /v1/drafts?client_id=&duration_days=
func (h *Handlers) HandleDiscard(w http.ResponseWriter, r *http.Request) {
	clientID, duration, ok := draftParams(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", "duration_days is required")
		return
	}

	err := h.service.Discard(r.Context(), userctx.OwnerOrDefault(r.Context()), clientID, duration)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
