package export

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
		writeError(w, http.StatusNotFound, "not_found", "Export not found")
	case errors.Is(err, ErrLimitReached):
		writeError(w, http.StatusConflict, "limit_reached", "Export limit reached for this client")
	case strings.HasPrefix(err.Error(), "validation failed: "):
		writeError(w, http.StatusBadRequest, "invalid_request", strings.TrimPrefix(err.Error(), "validation failed: "))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

// HandleCreate handles POST /v1/exports
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	resp, err := h.service.Generate(r.Context(), userctx.OwnerOrDefault(r.Context()), req)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// HandleList handles GET /v1/exports?client_id=
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context(), userctx.OwnerOrDefault(r.Context()), r.URL.Query().Get("client_id"))
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"exports": list})
}

// HandleDownload handles GET /v1/exports/{id}/download.
// With an S3-backed store it responds with a presigned URL; with the
// local store it streams the file bytes.
func (h *Handlers) HandleDownload(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Download(r.Context(), userctx.OwnerOrDefault(r.Context()), r.PathValue("id"))
	if err != nil {
		serviceError(w, err)
		return
	}

	if res.URL != "" {
		writeJSON(w, http.StatusOK, map[string]string{"url": res.URL, "file_name": res.FileName})
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+res.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write(res.Data)
}

// HandleDelete handles DELETE /v1/exports/{id}
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), userctx.OwnerOrDefault(r.Context()), r.PathValue("id")); err != nil {
		serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSend handles POST /v1/exports/{id}/send
func (h *Handlers) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
			return
		}
	}

	if err := h.service.Send(r.Context(), userctx.OwnerOrDefault(r.Context()), r.PathValue("id"), req); err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}
