package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/kamilpajak/verity/internal/audit"
	"github.com/kamilpajak/verity/pkg/models"
)

type createAuditRequest struct {
	PolicyText   string `json:"policy_text"`
	DocumentName string `json:"document_name"`
	Framework    string `json:"framework"`
	Strategy     string `json:"strategy"`
}

// handleCreateAudit runs a full audit synchronously and persists the result.
func (s *Server) handleCreateAudit(w http.ResponseWriter, r *http.Request) {
	var req createAuditRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if strings.TrimSpace(req.PolicyText) == "" {
		writeError(w, http.StatusBadRequest, "policy_text is required")
		return
	}
	if req.DocumentName == "" {
		req.DocumentName = "untitled"
	}

	framework, ok := models.ParseFramework(req.Framework)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown framework: "+req.Framework)
		return
	}

	strategy := models.StrategyChainOfThought
	if req.Strategy != "" {
		strategy, ok = models.ParseStrategy(req.Strategy)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown strategy: "+req.Strategy)
			return
		}
	}

	summary, err := s.runner.Run(r.Context(), audit.RunRequest{
		DocumentName: req.DocumentName,
		PolicyText:   req.PolicyText,
		Framework:    framework,
		Strategy:     strategy,
	}, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "audit failed")
		return
	}

	stored, err := s.store.SaveAudit(r.Context(), &summary)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save audit")
		return
	}

	writeJSON(w, http.StatusCreated, stored)
}

// handleGetAudit returns a single stored audit.
func (s *Server) handleGetAudit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("auditID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid audit ID")
		return
	}

	stored, err := s.store.GetAudit(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "database error")
		return
	}
	if stored == nil {
		writeError(w, http.StatusNotFound, "audit not found")
		return
	}

	writeJSON(w, http.StatusOK, stored)
}

// handleListAudits returns stored audits, newest first.
func (s *Server) handleListAudits(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r)

	audits, err := s.store.ListAudits(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list audits")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"audits": audits,
		"limit":  limit,
	})
}

// parseLimit extracts the limit query parameter with defaults.
func parseLimit(r *http.Request) int {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	return limit
}
