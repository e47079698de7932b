package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/deepthink-labs/deepthink-engine/internal/models"
	"github.com/deepthink-labs/deepthink-engine/internal/session"
)

// Live session handlers

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req models.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ScenarioID == "" && req.Scenario == nil {
		respondError(w, http.StatusBadRequest, "validation_error", "scenario_id or scenario is required")
		return
	}

	snapshot, err := s.sessions.Start(r.Context(), req)
	if err != nil {
		if errors.Is(err, session.ErrScenarioNotFound) {
			respondError(w, http.StatusNotFound, "scenario_not_found", "scenario not found")
			return
		}
		if errors.Is(err, session.ErrNeedsQuestions) {
			respondError(w, http.StatusBadRequest, "needs_questions", "this scenario needs questions before it can be started")
			return
		}
		slog.Error("failed to start session", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to start session")
		return
	}

	respondJSON(w, http.StatusCreated, snapshot)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snapshot, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "session not found")
			return
		}
		slog.Error("failed to get session", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get session")
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleChooseLanguage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.ChooseLanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	snapshot, err := s.sessions.ChooseLanguage(r.Context(), id, req.Language)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrSessionNotFound):
			respondError(w, http.StatusNotFound, "not_found", "session not found")
		case errors.Is(err, session.ErrUnsupportedLanguage):
			respondError(w, http.StatusBadRequest, "validation_error", "unsupported language")
		case errors.Is(err, session.ErrInvalidState):
			respondError(w, http.StatusConflict, "invalid_state", "language already chosen")
		default:
			slog.Error("failed to choose language", "error", err, "id", id)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to choose language")
		}
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.SubmitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	snapshot, err := s.sessions.SubmitAnswer(r.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrSessionNotFound):
			respondError(w, http.StatusNotFound, "not_found", "session not found")
		case errors.Is(err, session.ErrOptionRequired):
			respondError(w, http.StatusBadRequest, "validation_error", "option is required")
		case errors.Is(err, session.ErrInvalidState):
			respondError(w, http.StatusConflict, "invalid_state", "session is not accepting answers")
		default:
			slog.Error("failed to submit answer", "error", err, "id", id)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to submit answer")
		}
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleRestartSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	snapshot, err := s.sessions.Restart(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrSessionNotFound):
			respondError(w, http.StatusNotFound, "not_found", "session not found")
		case errors.Is(err, session.ErrInvalidState):
			respondError(w, http.StatusConflict, "invalid_state", "only failed sessions can be restarted")
		default:
			slog.Error("failed to restart session", "error", err, "id", id)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to restart session")
		}
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

func (s *Server) handleAbandonSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.sessions.Abandon(r.Context(), id); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "session not found")
			return
		}
		slog.Error("failed to abandon session", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to abandon session")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "session abandoned",
	})
}
