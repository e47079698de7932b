package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/deepthink-labs/deepthink-engine/internal/auth"
	"github.com/deepthink-labs/deepthink-engine/internal/models"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "service not ready")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// Auth handlers

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	resp, err := s.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(w, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
			return
		}
		slog.Error("login failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "login failed")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.authService.Logout()
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "logged out",
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "no authenticated user")
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// Gamification handlers

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	users := s.gamification.Leaderboard()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
		"total": len(users),
	})
}

func (s *Server) handleBadges(w http.ResponseWriter, r *http.Request) {
	badges := s.gamification.Badges()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"badges": badges,
		"total":  len(badges),
	})
}

func (s *Server) handleUserBadges(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.gamification.UserBadges())
}

func (s *Server) handleDailyQuests(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.gamification.DailyQuests())
}

func (s *Server) handleWeeklyLeague(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.gamification.WeeklyLeague())
}

func (s *Server) handleSkillTree(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.gamification.SkillTree())
}

func (s *Server) handleWeeklyProgress(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.gamification.WeeklyProgress())
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.gamification.Streak())
}
