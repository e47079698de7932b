package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/deepthink-labs/deepthink-engine/internal/ai"
	"github.com/deepthink-labs/deepthink-engine/internal/models"
	"github.com/deepthink-labs/deepthink-engine/internal/notes"
)

// Note handlers

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	result := s.notes.List(r.URL.Query().Get("q"))
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"notes": result,
		"total": len(result),
	})
}

func (s *Server) handleSaveNote(w http.ResponseWriter, r *http.Request) {
	var req models.SaveNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	note, err := s.notes.Save("", req.Content, req.ReminderAt)
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, note)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.SaveNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	note, err := s.notes.Save(id, req.Content, req.ReminderAt)
	if err != nil {
		if errors.Is(err, notes.ErrNoteNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "note not found")
			return
		}
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, note)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.notes.Delete(id); err != nil {
		if errors.Is(err, notes.ErrNoteNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "note not found")
			return
		}
		slog.Error("failed to delete note", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to delete note")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "note deleted",
	})
}

func (s *Server) handleNoteSuggestion(w http.ResponseWriter, r *http.Request) {
	var req models.NoteSuggestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.Content == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "content is required")
		return
	}
	if req.Language == "" {
		req.Language = models.SessionLanguages[0]
	}

	suggestion, err := s.gateway.NoteSuggestion(r.Context(), req.Content, req.Language)
	if err != nil {
		if errors.Is(err, ai.ErrEmptyResult) {
			respondError(w, http.StatusBadGateway, "generation_failed", "the AI failed to produce a suggestion")
			return
		}
		slog.Error("failed to get note suggestion", "error", err)
		respondError(w, http.StatusBadGateway, "ai_unavailable", "could not reach the AI service")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"suggestion": suggestion,
	})
}
