package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/deepthink-labs/deepthink-engine/internal/ai"
	"github.com/deepthink-labs/deepthink-engine/internal/catalog"
	"github.com/deepthink-labs/deepthink-engine/internal/models"
)

// Catalog handlers — built-in scenarios plus user-authored ones

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	var scenarios []*models.ScenarioTemplate
	if jobType := r.URL.Query().Get("job_type"); jobType != "" {
		scenarios = s.catalogLoader.ListByJobType(jobType)
	} else {
		scenarios = s.catalogLoader.List()
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"scenarios": scenarios,
		"total":     len(scenarios),
	})
}

func (s *Server) handleListJobTypes(w http.ResponseWriter, r *http.Request) {
	jobTypes := s.catalogLoader.JobTypes()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"job_types": jobTypes,
		"total":     len(jobTypes),
	})
}

func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "scenario id is required")
		return
	}

	if sc := s.catalogLoader.Get(id); sc != nil {
		respondJSON(w, http.StatusOK, sc)
		return
	}

	sc, err := s.catalogStore.Get(id)
	if err != nil {
		respondError(w, http.StatusNotFound, "not_found", "scenario not found")
		return
	}
	respondJSON(w, http.StatusOK, sc)
}

func (s *Server) handleGenerateScenario(w http.ResponseWriter, r *http.Request) {
	var req models.GenerateScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.JobType == "" || req.Topic == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "jobType and topic are required")
		return
	}

	scenario, err := s.gateway.GenerateCustomScenario(r.Context(), req.JobType, req.Level, req.Topic)
	if err != nil {
		if errors.Is(err, ai.ErrEmptyResult) {
			respondError(w, http.StatusBadGateway, "generation_failed", "the AI failed to generate a scenario")
			return
		}
		slog.Error("failed to generate scenario", "error", err)
		respondError(w, http.StatusBadGateway, "ai_unavailable", "could not reach the AI service")
		return
	}

	respondJSON(w, http.StatusOK, scenario)
}

func (s *Server) handleSuggestChallenge(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	history, err := s.repo.ListSessions(r.Context(), user.ID, 20, 0)
	if err != nil {
		slog.Error("failed to load history for challenge suggestion", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load session history")
		return
	}

	sessions := make([]models.Session, 0, len(history))
	for _, h := range history {
		sessions = append(sessions, *h)
	}

	scenario, err := s.gateway.SuggestChallenge(r.Context(), sessions)
	if err != nil {
		if errors.Is(err, ai.ErrEmptyResult) {
			respondError(w, http.StatusBadGateway, "generation_failed", "the AI failed to suggest a challenge")
			return
		}
		slog.Error("failed to suggest challenge", "error", err)
		respondError(w, http.StatusBadGateway, "ai_unavailable", "could not reach the AI service")
		return
	}

	respondJSON(w, http.StatusOK, scenario)
}

// User-authored scenario handlers

func (s *Server) handleCreateScenario(w http.ResponseWriter, r *http.Request) {
	var req models.CreateScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	user := UserFromContext(r.Context())
	scenario, err := s.catalogStore.Create(user.ID, user.Name, req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, scenario)
}

func (s *Server) handleListMyScenarios(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	scenarios := s.catalogStore.ListByAuthor(user.ID)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"scenarios": scenarios,
		"total":     len(scenarios),
	})
}

func (s *Server) handleListPublishedScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios := s.catalogStore.ListPublished()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"scenarios": scenarios,
		"total":     len(scenarios),
	})
}

func (s *Server) handlePublishScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user := UserFromContext(r.Context())

	scenario, err := s.catalogStore.Publish(user.ID, id)
	if err != nil {
		if errors.Is(err, catalog.ErrScenarioNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "scenario not found")
			return
		}
		if errors.Is(err, catalog.ErrNotOwner) {
			respondError(w, http.StatusForbidden, "forbidden", "only the author can publish a scenario")
			return
		}
		slog.Error("failed to publish scenario", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to publish scenario")
		return
	}

	respondJSON(w, http.StatusOK, scenario)
}

func (s *Server) handleDeleteScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user := UserFromContext(r.Context())

	if err := s.catalogStore.Delete(user.ID, id); err != nil {
		if errors.Is(err, catalog.ErrScenarioNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "scenario not found")
			return
		}
		if errors.Is(err, catalog.ErrNotOwner) {
			respondError(w, http.StatusForbidden, "forbidden", "only the author can delete a scenario")
			return
		}
		slog.Error("failed to delete scenario", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to delete scenario")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "scenario deleted",
	})
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	user := UserFromContext(r.Context())

	favorited := s.catalogStore.ToggleFavorite(user.ID, id)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"scenario_id": id,
		"favorited":   favorited,
	})
}

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	favorites := s.catalogStore.Favorites(user.ID)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"favorites": favorites,
		"total":     len(favorites),
	})
}
