package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/tms-backend/internal/config"
	"github.com/stemsi/tms-backend/internal/criteria"
	"github.com/stemsi/tms-backend/internal/database"
	"github.com/stemsi/tms-backend/internal/handler"
	"github.com/stemsi/tms-backend/internal/logger"
	"github.com/stemsi/tms-backend/internal/middleware"
	"github.com/stemsi/tms-backend/internal/repository"
	"github.com/stemsi/tms-backend/internal/router"
	"github.com/stemsi/tms-backend/internal/service"
	"github.com/stemsi/tms-backend/internal/validator"
	"github.com/stemsi/tms-backend/internal/worker"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting TMS Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	if err := validator.Setup(); err != nil {
		log.Fatal().Err(err).Msg("Failed to set up validator")
	}

	// ─── Register Criteria Types ───────────────────────────────────────
	// A criteria type with an undeclared numeric field is a programming
	// error; refuse to serve with an incomplete registry.
	registry := criteria.NewRegistry(log)
	if err := criteria.RegisterAll(registry, validator.StructSchema{}); err != nil {
		log.Fatal().Err(err).Msg("Failed to register criteria")
	}
	log.Info().Strs("criteria", registry.Blueprints.Identifiers()).Msg("Criteria registered")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Migrate ───────────────────────────────────────────────────────
	if cfg.AutoMigrate {
		if err := database.MigrateUp(cfg, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to migrate database")
		}
	}

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	criteriaRepo := repository.NewScheinCriteriaRepository(pool)
	studentRepo := repository.NewStudentRepository(pool)
	sheetRepo := repository.NewSheetRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	tutorialRepo := repository.NewTutorialRepository(pool)
	summaryCache := repository.NewSummaryCache(rdb, cfg.SummaryCacheTTL)

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg, rdb)
	criteriaService := service.NewScheinCriteriaService(
		registry, criteriaRepo, studentRepo, sheetRepo, examRepo, tutorialRepo,
		summaryCache, cfg.SummaryWorkers, log,
	)
	pointsService := service.NewPointsService(studentRepo, sheetRepo, examRepo, summaryCache, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:           handler.NewAuthHandler(authService),
		ScheinCriteria: handler.NewScheinCriteriaHandler(criteriaService, log),
		Points:         handler.NewPointsHandler(pointsService, log),
		System:         handler.NewSystemHandler(pool, rdb, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	summaryWorker := worker.NewSummaryWorker(rdb, criteriaService, log)
	workers.Add(1)
	go func() {
		defer workers.Done()
		summaryWorker.Start(workerCtx)
	}()

	// ─── Setup Router ──────────────────────────────────────────────────
	limiter := middleware.NewRateLimiter(rdb, "write", cfg.RateLimitPerMinute, time.Minute, log)
	r := router.SetupRouter(authService, handlers, cfg, limiter, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers; pending students go back on the queue.
	workerCancel()
	workers.Wait()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
