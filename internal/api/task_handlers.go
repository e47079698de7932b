package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/deepthink-labs/deepthink-engine/internal/ai"
	"github.com/deepthink-labs/deepthink-engine/internal/models"
	"github.com/deepthink-labs/deepthink-engine/internal/taskboard"
)

// Task board handlers

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	priority := models.TaskPriority(r.URL.Query().Get("priority"))
	if priority != "" && !priority.IsValid() {
		respondError(w, http.StatusBadRequest, "validation_error", "invalid priority filter")
		return
	}

	tasks := s.board.List(priority)
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tasks": tasks,
		"total": len(tasks),
	})
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req models.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	task, err := s.board.Create(r.Context(), req)
	if err != nil {
		if errors.Is(err, taskboard.ErrInvalidRequest) {
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		slog.Error("failed to create task", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to create task")
		return
	}

	respondJSON(w, http.StatusCreated, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	task, err := s.board.Update(r.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, taskboard.ErrTaskNotFound):
			respondError(w, http.StatusNotFound, "not_found", "task not found")
		case errors.Is(err, taskboard.ErrInvalidRequest):
			respondError(w, http.StatusBadRequest, "validation_error", err.Error())
		default:
			slog.Error("failed to update task", "error", err, "id", id)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to update task")
		}
		return
	}

	respondJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.board.Delete(r.Context(), id); err != nil {
		if errors.Is(err, taskboard.ErrTaskNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "task not found")
			return
		}
		slog.Error("failed to delete task", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to delete task")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "task deleted",
	})
}

func (s *Server) handleMoveTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.MoveTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	task, err := s.board.Move(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, taskboard.ErrTaskNotFound):
			respondError(w, http.StatusNotFound, "not_found", "task not found")
		case errors.Is(err, taskboard.ErrInvalidStatus):
			respondError(w, http.StatusBadRequest, "validation_error", "invalid target status")
		default:
			slog.Error("failed to move task", "error", err, "id", id)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to move task")
		}
		return
	}

	respondJSON(w, http.StatusOK, task)
}

func (s *Server) handleBreakdownTask(w http.ResponseWriter, r *http.Request) {
	var req models.BreakdownRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.Title == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "title is required")
		return
	}

	subtasks, err := s.gateway.BreakdownTask(r.Context(), req.Title)
	if err != nil {
		if errors.Is(err, ai.ErrEmptyResult) {
			respondError(w, http.StatusBadGateway, "generation_failed", "the AI failed to break down the task")
			return
		}
		slog.Error("failed to break down task", "error", err)
		respondError(w, http.StatusBadGateway, "ai_unavailable", "could not reach the AI service")
		return
	}

	created := s.board.AddSubtasks(r.Context(), subtasks)
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"tasks": created,
		"total": len(created),
	})
}

func (s *Server) handleBoardProgress(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.board.Progress())
}
