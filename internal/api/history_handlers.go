package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/deepthink-labs/deepthink-engine/internal/storage"
)

// Session history handlers

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	limit := 50
	offset := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	if jobType := r.URL.Query().Get("job_type"); jobType != "" {
		sessions, err := s.repo.ListSessionsByJobType(r.Context(), user.ID, jobType)
		if err != nil {
			slog.Error("failed to list sessions by job type", "error", err)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to list sessions")
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"sessions": sessions,
			"total":    len(sessions),
		})
		return
	}

	sessions, err := s.repo.ListSessions(r.Context(), user.ID, limit, offset)
	if err != nil {
		slog.Error("failed to list sessions", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list sessions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"total":    len(sessions),
	})
}

func (s *Server) handleGetHistorySession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := s.repo.GetSession(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "session not found")
			return
		}
		slog.Error("failed to get session record", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get session")
		return
	}

	respondJSON(w, http.StatusOK, record)
}

func (s *Server) handleFieldLevels(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	levels, err := s.repo.GetFieldLevels(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to compute field levels", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to compute field levels")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"field_levels": levels,
		"total":        len(levels),
	})
}
