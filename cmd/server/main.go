// BlocPlan operating-room planning service.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/blocplan/blocplan/internal/config"
	"github.com/blocplan/blocplan/internal/database"
	"github.com/blocplan/blocplan/internal/handler"
	"github.com/blocplan/blocplan/internal/metrics"
	"github.com/blocplan/blocplan/internal/middleware"
	"github.com/blocplan/blocplan/internal/repository"
	"github.com/blocplan/blocplan/pkg/logger"
	"github.com/blocplan/blocplan/pkg/planner/constraint"
	"github.com/blocplan/blocplan/pkg/planner/generator"
)

// Build info, injected via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	format := "json"
	if cfg.IsDevelopment() {
		format = "console"
	}
	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: format,
	})

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Str("env", cfg.App.Env).
		Msg("starting blocplan")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Error().Err(err).Msg("database connection failed")
		os.Exit(1)
	}
	defer db.Close()

	staffRepo := repository.NewStaffRepository(db)
	leaveRepo := repository.NewLeaveRepository(db)
	sectorRepo := repository.NewSectorRepository(db, cfg.Planner.MaxRoomsPerSupervisor)
	planningRepo := repository.NewPlanningRepository(db, staffRepo, leaveRepo, sectorRepo)

	evaluator := constraint.NewEvaluator()
	gen := generator.New(planningRepo, evaluator)

	planningHandler := handler.NewPlanningHandler(gen, planningRepo, cfg.Planner.GenerationTimeout)
	replacementHandler := handler.NewReplacementHandler(planningRepo, cfg.Planner.HistoryWindowDays)
	statsHandler := handler.NewStatsHandler(planningRepo, staffRepo, sectorRepo)
	healthHandler := handler.NewHealthHandler(db, Version)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RateLimit(middleware.NewRateLimiter(float64(cfg.API.RateLimit))))
	if cfg.API.CORSEnabled {
		r.Use(middleware.CORS)
	}
	r.Use(middleware.Logging)
	r.Use(middleware.Recovery)

	r.Get("/health", healthHandler.Health)
	r.Get("/version", healthHandler.Version)
	if cfg.Metrics.Enabled {
		r.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/plannings", func(r chi.Router) {
			r.Post("/generate", planningHandler.Generate)
			r.Post("/validate", planningHandler.Validate)
			r.Post("/publish", planningHandler.Publish)
		})
		r.Route("/replacements", func(r chi.Router) {
			r.Post("/search", replacementHandler.Search)
			r.Post("/apply", replacementHandler.Apply)
		})
		r.Route("/stats", func(r chi.Router) {
			r.Get("/workload", statsHandler.Workload)
			r.Get("/coverage", statsHandler.Coverage)
		})
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      r,
		ReadTimeout:  cfg.API.Timeout,
		WriteTimeout: 2 * cfg.API.Timeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("url", fmt.Sprintf("http://localhost:%d", cfg.App.Port)).
			Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("server failed")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown failed")
		os.Exit(1)
	}

	logger.Info().Msg("server stopped")
}
