package journal

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
		writeError(w, http.StatusNotFound, "not_found", "Entry not found")
	case strings.HasPrefix(err.Error(), "validation failed: "):
		writeError(w, http.StatusBadRequest, "invalid_request", strings.TrimPrefix(err.Error(), "validation failed: "))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

// HandleCreate handles POST /v1/journal/{kind}. The response carries
// the updated entry list and summary, not just the created entry.
func (h *Handlers) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	owner := userctx.OwnerOrDefault(r.Context())
	kind := r.PathValue("kind")
	if _, err := h.service.Create(r.Context(), owner, kind, &req); err != nil {
		serviceError(w, err)
		return
	}
	view, err := h.service.View(r.Context(), owner, kind, req.ClientID, req.Date)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// HandleList handles GET /v1/journal/{kind}?client_id=&date=
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, err := h.service.View(
		r.Context(),
		userctx.OwnerOrDefault(r.Context()),
		r.PathValue("kind"),
		q.Get("client_id"),
		q.Get("date"),
	)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleDelete handles DELETE /v1/journal/{kind}?entry_id=&client_id=&date=
// and answers with the updated entry list and summary.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entryID := q.Get("entry_id")
	if entryID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "entry_id is required")
		return
	}

	owner := userctx.OwnerOrDefault(r.Context())
	if err := h.service.Delete(r.Context(), owner, entryID); err != nil {
		serviceError(w, err)
		return
	}
	view, err := h.service.View(
		r.Context(),
		owner,
		r.PathValue("kind"),
		q.Get("client_id"),
		q.Get("date"),
	)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleSummary handles GET /v1/journal/summary?client_id=&date=
func (h *Handlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	summary, err := h.service.Summarize(
		r.Context(),
		userctx.OwnerOrDefault(r.Context()),
		q.Get("client_id"),
		q.Get("date"),
	)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// HandleSetTargets handles PUT /v1/journal/targets
func (h *Handlers) HandleSetTargets(w http.ResponseWriter, r *http.Request) {
	var req TargetsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	t, err := h.service.SetTargets(r.Context(), userctx.OwnerOrDefault(r.Context()), &req)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}
