package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/nutridesk/server/internal/auth"
	"github.com/nutridesk/server/internal/blob"
	"github.com/nutridesk/server/internal/catalog"
	"github.com/nutridesk/server/internal/clients"
	"github.com/nutridesk/server/internal/config"
	"github.com/nutridesk/server/internal/dietplan"
	"github.com/nutridesk/server/internal/drafts"
	"github.com/nutridesk/server/internal/export"
	"github.com/nutridesk/server/internal/journal"
	"github.com/nutridesk/server/internal/mailer"
	"github.com/nutridesk/server/internal/storage"
	"github.com/nutridesk/server/internal/storage/memory"
	"github.com/nutridesk/server/internal/storage/postgres"
)

// Server wires storage, services and routes behind one ServeMux.
type Server struct {
	config         *config.Config
	mux            *http.ServeMux
	storage        storage.Storage
	authMiddleware *auth.Middleware
	draftsService  *drafts.Service
}

func New(cfg *config.Config) *Server {
	s := &Server{
		config: cfg,
		mux:    http.NewServeMux(),
	}

	s.initStorage()
	s.routes()
	return s
}

// initStorage picks Postgres when a database URL is configured, with an
// in-memory fallback when the connection fails.
func (s *Server) initStorage() {
	if s.config.DatabaseURL == "" {
		log.Println("INFO storage: using in-memory storage")
		s.storage = memory.New()
		return
	}

	log.Println("INFO storage: connecting to PostgreSQL...")
	ctx := context.Background()
	pgStorage, err := postgres.New(ctx, s.config.DatabaseURL)
	if err != nil {
		log.Printf("WARN storage: PostgreSQL connection failed: %v", err)
		log.Println("WARN storage: falling back to in-memory storage")
		s.storage = memory.New()
		return
	}
	log.Println("INFO storage: PostgreSQL connected")
	s.storage = pgStorage
}

func (s *Server) routes() {
	// Health check (no auth required)
	s.mux.HandleFunc("/healthz", s.handleHealthz)

	// Auth API (no auth required)
	authService := auth.NewService(s.config)
	authHandler := auth.NewHandlers(authService)
	s.authMiddleware = auth.NewMiddleware(s.config, authService)

	// POST /v1/auth/dev - local dev token
	s.mux.HandleFunc("POST /v1/auth/dev", authHandler.HandleDevAuth)

	// Clients API
	clientsService := clients.NewService(s.storage)
	clientsHandler := clients.NewHandlers(clientsService)

	s.mux.HandleFunc("GET /v1/clients", clientsHandler.HandleList)
	s.mux.HandleFunc("POST /v1/clients", clientsHandler.HandleCreate)
	s.mux.HandleFunc("GET /v1/clients/{id}", clientsHandler.HandleGet)
	s.mux.HandleFunc("PUT /v1/clients/{id}", clientsHandler.HandleUpdate)
	s.mux.HandleFunc("PATCH /v1/clients/{id}", clientsHandler.HandleUpdate)
	s.mux.HandleFunc("DELETE /v1/clients/{id}", clientsHandler.HandleDelete)

	// Drafts API (auto-save)
	s.draftsService = drafts.NewService(s.storage, s.config)
	draftsHandler := drafts.NewHandlers(s.draftsService)

	s.mux.HandleFunc("PUT /v1/drafts", draftsHandler.HandleSave)
	s.mux.HandleFunc("GET /v1/drafts", draftsHandler.HandleGet)
	s.mux.HandleFunc("DELETE /v1/drafts", draftsHandler.HandleDiscard)

	// Diet Plans API. Saving a plan for real drops the matching draft.
	plansService := dietplan.NewService(s.storage, s.config).
		WithDraftDiscard(func(ctx context.Context, owner, clientID string, durationDays int) {
			if err := s.draftsService.Discard(ctx, owner, clientID, durationDays); err != nil {
				log.Printf("WARN plans: draft discard after save failed: %v", err)
			}
		})
	plansHandler := dietplan.NewHandlers(plansService)

	// GET /v1/plans?client_id= - active plan for a client
	s.mux.HandleFunc("GET /v1/plans", plansHandler.HandleGet)

	// PUT /v1/plans/replace - validate and save the whole plan
	s.mux.HandleFunc("PUT /v1/plans/replace", plansHandler.HandleReplace)

	// DELETE /v1/plans?client_id= - delete a client's plan
	s.mux.HandleFunc("DELETE /v1/plans", plansHandler.HandleDelete)

	// POST /v1/plans/ops - apply one grid operation
	s.mux.HandleFunc("POST /v1/plans/ops", plansHandler.HandleApplyOp)

	// Food Catalog API
	catalogService := catalog.NewService(s.storage, s.storage, s.config)
	catalogHandler := catalog.NewHandlers(catalogService)

	// GET /v1/recipes?q=&client_id= - ranked search with client exclusions
	s.mux.HandleFunc("GET /v1/recipes", catalogHandler.HandleSearch)
	s.mux.HandleFunc("POST /v1/recipes", catalogHandler.HandleCreate)
	s.mux.HandleFunc("GET /v1/recipes/{id}", catalogHandler.HandleGet)
	s.mux.HandleFunc("PUT /v1/recipes/{id}", catalogHandler.HandleUpdate)
	s.mux.HandleFunc("DELETE /v1/recipes/{id}", catalogHandler.HandleDelete)

	// Exports API
	blobStore, blobMode, err := blob.NewBlobStore(s.config.Blob, "data/exports", log.Default())
	if err != nil {
		log.Fatalf("FATAL blob: failed to initialize store: %v", err)
	}
	log.Printf("INFO blob: export blob mode: %s", blobMode)

	emailSender, err := mailer.NewSenderFromConfig(s.config, log.Default())
	if err != nil {
		log.Printf("WARN mailer: sender initialization failed, using local: %v", err)
		emailSender = mailer.NewLocalSender(log.Default())
	}

	exportService := export.NewService(s.storage, blobStore, emailSender, s.config, log.Default())
	exportHandler := export.NewHandlers(exportService)

	s.mux.HandleFunc("POST /v1/exports", exportHandler.HandleCreate)
	s.mux.HandleFunc("GET /v1/exports", exportHandler.HandleList)
	s.mux.HandleFunc("GET /v1/exports/{id}/download", exportHandler.HandleDownload)
	s.mux.HandleFunc("DELETE /v1/exports/{id}", exportHandler.HandleDelete)
	s.mux.HandleFunc("POST /v1/exports/{id}/send", exportHandler.HandleSend)

	// Journal API
	journalService := journal.NewService(s.storage, s.config)
	journalHandler := journal.NewHandlers(journalService)

	// GET /v1/journal/summary?client_id=&date= - computed day summary
	s.mux.HandleFunc("GET /v1/journal/summary", journalHandler.HandleSummary)

	// PUT /v1/journal/targets - upsert per-client daily targets
	s.mux.HandleFunc("PUT /v1/journal/targets", journalHandler.HandleSetTargets)

	// POST/GET /v1/journal/{kind} - entries by kind and date
	s.mux.HandleFunc("POST /v1/journal/{kind}", journalHandler.HandleCreate)
	s.mux.HandleFunc("GET /v1/journal/{kind}", journalHandler.HandleList)

	// DELETE /v1/journal/{kind}?entry_id= - remove one entry, answer with the updated list
	s.mux.HandleFunc("DELETE /v1/journal/{kind}", journalHandler.HandleDelete)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}

// DraftsService exposes the drafts service so the entrypoint can run
// the TTL sweeper.
func (s *Server) DraftsService() *drafts.Service {
	return s.draftsService
}

// Handler returns the full middleware chain, outermost first:
// CORS → Rate Limit → Auth → Router.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	if s.authMiddleware != nil && s.config.AuthMode != "none" {
		if s.config.AuthRequired {
			handler = s.authMiddleware.RequireAuth(handler)
		} else {
			handler = s.authMiddleware.OptionalAuth(handler)
		}
	}
	handler = RateLimitMiddleware(s.config, handler)
	handler = CORSMiddleware(s.config, handler)
	return handler
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	log.Printf("Server listening on http://localhost%s\n", addr)
	log.Printf("Health check: http://localhost%s/healthz\n", addr)
	log.Printf("Clients API: http://localhost%s/v1/clients\n", addr)

	return http.ListenAndServe(addr, s.Handler())
}

// Close releases storage resources.
func (s *Server) Close() error {
	if s.storage != nil {
		return s.storage.Close(context.Background())
	}
	return nil
}
