package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deepthink-labs/deepthink-engine/internal/ai"
	"github.com/deepthink-labs/deepthink-engine/internal/api"
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

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.Info("starting deepthink-engine",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	// Run database migrations
	slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
	if err := storage.MigrateFromDSN(initCtx, cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize database repository
	repo, err := storage.NewPostgresRepository(initCtx, storage.PostgresConfig{
		DSN:          cfg.Database.DSN,
		MaxOpenConns: int32(cfg.Database.MaxOpenConns),
		MaxIdleConns: int32(cfg.Database.MaxIdleConns),
	})
	if err != nil {
		slog.Error("failed to create database repository", "error", err)
		os.Exit(1)
	}
	slog.Info("database connected successfully")

	// Notification hub, shared by every producer
	hub := notify.NewHub()

	// Task board backed by Redis
	persister, err := taskboard.NewRedisPersister(cfg.Redis)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	board := taskboard.NewBoard(persister, hub)
	if err := board.Load(initCtx); err != nil {
		slog.Error("failed to load task board", "error", err)
		os.Exit(1)
	}

	// Scenario catalog and user-authored scenario store
	loader := catalog.NewLoader()
	if err := loader.LoadFromDir(cfg.Catalog.Dir); err != nil {
		slog.Warn("failed to load scenario catalog", "dir", cfg.Catalog.Dir, "error", err)
	}
	store := catalog.NewStore()
	resolver := catalog.NewResolver(loader, store)

	// AI gateway
	gateway, err := ai.NewGeminiClient(cfg.AI)
	if err != nil {
		slog.Error("failed to create AI gateway", "error", err)
		os.Exit(1)
	}

	// Auth
	authService := auth.NewService(cfg.Auth)

	// Live session engine
	engine := session.NewEngine(gateway, resolver, repo, hub, authService.User().ID)

	// Notes with reminder poller
	noteStore := notes.NewStore()
	poller := notes.NewPoller(noteStore, hub, cfg.Reminder.Interval)

	// Billing
	billingService := billing.NewService(cfg.Billing, repo)

	// Gamification displays
	gamificationService := gamification.NewService()

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start reminder poller
	poller.Start(ctx)

	// Setup HTTP server
	server := api.NewServer(
		cfg.Server,
		authService,
		engine,
		loader,
		store,
		board,
		noteStore,
		gateway,
		repo,
		billingService,
		gamificationService,
		hub,
	)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Tear down live sessions and close connections
	engine.Close()
	if err := persister.Close(); err != nil {
		slog.Error("redis close error", "error", err)
	}
	if err := repo.Close(); err != nil {
		slog.Error("repository close error", "error", err)
	}

	slog.Info("deepthink-engine stopped")
}
