// Package api provides the audit API server.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/kamilpajak/verity/internal/audit"
	"github.com/kamilpajak/verity/internal/auth"
	"github.com/kamilpajak/verity/internal/database"
	"github.com/kamilpajak/verity/pkg/models"
)

// AuditRunner executes a compliance audit. Satisfied by *audit.Engine.
type AuditRunner interface {
	Run(ctx context.Context, req audit.RunRequest, progress audit.ProgressFunc) (models.Summary, error)
}

// AuditStore persists audit runs. Satisfied by *database.DB.
type AuditStore interface {
	SaveAudit(ctx context.Context, summary *models.Summary) (*database.Audit, error)
	GetAudit(ctx context.Context, id uuid.UUID) (*database.Audit, error)
	ListAudits(ctx context.Context, limit int) ([]*database.Audit, error)
}

// Server is the API server.
type Server struct {
	store        AuditStore
	runner       AuditRunner
	authVerifier *auth.Verifier
	mux          *http.ServeMux
}

// Config holds API server configuration.
type Config struct {
	Store        AuditStore
	Runner       AuditRunner
	AuthVerifier *auth.Verifier
}

// NewServer creates a new API server.
func NewServer(cfg Config) *Server {
	s := &Server{
		store:        cfg.Store,
		runner:       cfg.Runner,
		authVerifier: cfg.AuthVerifier,
		mux:          http.NewServeMux(),
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	authMiddleware := auth.Middleware(s.authVerifier)

	// Public endpoints
	s.mux.HandleFunc("GET /health", s.handleHealth)

	// Protected endpoints
	s.mux.HandleFunc("POST /api/audits", s.withAuth(authMiddleware, s.handleCreateAudit))
	s.mux.HandleFunc("GET /api/audits", s.withAuth(authMiddleware, s.handleListAudits))
	s.mux.HandleFunc("GET /api/audits/{auditID}", s.withAuth(authMiddleware, s.handleGetAudit))
}

func (s *Server) withAuth(middleware func(http.Handler) http.Handler, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		middleware(http.HandlerFunc(handler)).ServeHTTP(w, r)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Add CORS headers
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}

	s.mux.ServeHTTP(w, r)
}

// Close releases resources.
func (s *Server) Close() {
	if s.authVerifier != nil {
		s.authVerifier.Close()
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func readJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
