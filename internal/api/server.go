package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/deepthink-labs/deepthink-engine/internal/ai"
	"github.com/deepthink-labs/deepthink-engine/internal/auth"
	"github.com/deepthink-labs/deepthink-engine/internal/billing"
	"github.com/deepthink-labs/deepthink-engine/internal/catalog"
	"github.com/deepthink-labs/deepthink-engine/internal/config"
	"github.com/deepthink-labs/deepthink-engine/internal/gamification"
	"github.com/deepthink-labs/deepthink-engine/internal/notes"
	"github.com/deepthink-labs/deepthink-engine/internal/notify"
	"github.com/deepthink-labs/deepthink-engine/internal/session"
	"github.com/deepthink-labs/deepthink-engine/internal/storage"
	"github.com/deepthink-labs/deepthink-engine/internal/taskboard"
)

// Server represents the HTTP API server
type Server struct {
	config         config.ServerConfig
	router         *chi.Mux
	authService    *auth.Service
	sessions       session.Manager
	catalogLoader  *catalog.Loader
	catalogStore   *catalog.Store
	board          *taskboard.Board
	notes          *notes.Store
	gateway        ai.Gateway
	repo           storage.Repository
	billing        *billing.Service
	gamification   *gamification.Service
	hub            *notify.Hub
	authMiddleware *AuthMiddleware
}

// NewServer creates a new API server
func NewServer(
	cfg config.ServerConfig,
	authService *auth.Service,
	sessions session.Manager,
	loader *catalog.Loader,
	store *catalog.Store,
	board *taskboard.Board,
	noteStore *notes.Store,
	gateway ai.Gateway,
	repo storage.Repository,
	billingService *billing.Service,
	gamificationService *gamification.Service,
	hub *notify.Hub,
) *Server {
	s := &Server{
		config:         cfg,
		authService:    authService,
		sessions:       sessions,
		catalogLoader:  loader,
		catalogStore:   store,
		board:          board,
		notes:          noteStore,
		gateway:        gateway,
		repo:           repo,
		billing:        billingService,
		gamification:   gamificationService,
		hub:            hub,
		authMiddleware: NewAuthMiddleware(authService),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (outside versioned API - public)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api/v1", func(r chi.Router) {
		// Public: login and the payment provider callback, which carries its
		// own signature verification instead of a bearer token.
		r.Post("/auth/login", s.handleLogin)
		r.Post("/billing/webhook", s.handleBillingWebhook)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware.Authenticate)

			r.Post("/auth/logout", s.handleLogout)
			r.Get("/auth/me", s.handleProfile)

			// Scenario catalog and user-authored scenarios
			r.Route("/scenarios", func(r chi.Router) {
				r.Get("/", s.handleListScenarios)
				r.Get("/job-types", s.handleListJobTypes)
				r.Post("/generate", s.handleGenerateScenario)
				r.Post("/suggest-challenge", s.handleSuggestChallenge)

				r.Route("/custom", func(r chi.Router) {
					r.Post("/", s.handleCreateScenario)
					r.Get("/mine", s.handleListMyScenarios)
					r.Get("/published", s.handleListPublishedScenarios)
					r.Get("/favorites", s.handleListFavorites)
					r.Post("/{id}/publish", s.handlePublishScenario)
					r.Post("/{id}/favorite", s.handleToggleFavorite)
					r.Delete("/{id}", s.handleDeleteScenario)
				})

				r.Get("/{id}", s.handleGetScenario)
			})

			// Live training sessions
			r.Route("/sessions", func(r chi.Router) {
				r.Post("/", s.handleStartSession)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetSession)
					r.Post("/language", s.handleChooseLanguage)
					r.Post("/answer", s.handleSubmitAnswer)
					r.Post("/restart", s.handleRestartSession)
					r.Delete("/", s.handleAbandonSession)
				})
			})

			// Kanban task board
			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", s.handleListTasks)
				r.Post("/", s.handleCreateTask)
				r.Get("/progress", s.handleBoardProgress)
				r.Post("/breakdown", s.handleBreakdownTask)
				r.Route("/{id}", func(r chi.Router) {
					r.Put("/", s.handleUpdateTask)
					r.Delete("/", s.handleDeleteTask)
					r.Post("/move", s.handleMoveTask)
				})
			})

			// Notes
			r.Route("/notes", func(r chi.Router) {
				r.Get("/", s.handleListNotes)
				r.Post("/", s.handleSaveNote)
				r.Post("/suggestion", s.handleNoteSuggestion)
				r.Put("/{id}", s.handleUpdateNote)
				r.Delete("/{id}", s.handleDeleteNote)
			})

			// Session history and per-field mastery
			r.Route("/history", func(r chi.Router) {
				r.Get("/", s.handleListHistory)
				r.Get("/field-levels", s.handleFieldLevels)
				r.Get("/{id}", s.handleGetHistorySession)
			})

			// Gamification displays
			r.Route("/gamification", func(r chi.Router) {
				r.Get("/leaderboard", s.handleLeaderboard)
				r.Get("/badges", s.handleBadges)
				r.Get("/user-badges", s.handleUserBadges)
				r.Get("/quests", s.handleDailyQuests)
				r.Get("/league", s.handleWeeklyLeague)
				r.Get("/skill-tree", s.handleSkillTree)
				r.Get("/weekly-progress", s.handleWeeklyProgress)
				r.Get("/streak", s.handleStreak)
			})

			// Billing
			r.Route("/billing", func(r chi.Router) {
				r.Post("/checkout", s.handleCreateCheckout)
				r.Get("/subscription", s.handleGetSubscription)
			})

			// Notifications
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", s.handleRecentNotifications)
				r.Get("/ws", s.handleNotificationsWS)
			})
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
