package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/docsense/docsense/internal/analyze"
	"github.com/docsense/docsense/internal/backend"
	"github.com/docsense/docsense/internal/config"
	"github.com/docsense/docsense/internal/registry"
	"github.com/docsense/docsense/internal/session"
)

// Server is the HTTP API exposing the analysis pipeline.
type Server struct {
	router       chi.Router
	orchestrator *analyze.Orchestrator
	registry     *registry.Registry
	session      *session.Session
	backend      *backend.Client
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *analyze.Orchestrator, reg *registry.Registry, sess *session.Session, bc *backend.Client, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		registry:     reg,
		session:      sess,
		backend:      bc,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey))
		}

		r.Get("/api/documents", s.handleListDocuments)
		r.Post("/api/documents/{docID}/open", s.handleOpenDocument)
		r.Delete("/api/documents/{docID}", s.handleDeleteDocument)
		r.Post("/api/session/close", s.handleCloseSession)

		r.Post("/api/documents/{docID}/quick-analysis", s.handleQuickAnalyze)
		r.Post("/api/documents/{docID}/analysis", s.handleFullAnalyze)
		r.Post("/api/documents/{docID}/podcast", s.handlePodcast)

		r.Post("/api/upload/bulk", s.handleBulkUpload)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"documents": s.registry.Len(),
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
