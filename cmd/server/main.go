package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avelar/studyflash/internal/api"
	"github.com/avelar/studyflash/internal/config"
	"github.com/avelar/studyflash/internal/db"
	"github.com/avelar/studyflash/internal/generator"
	"github.com/avelar/studyflash/internal/jobs"
	"github.com/avelar/studyflash/internal/llm"
	"github.com/avelar/studyflash/internal/logger"
	"github.com/avelar/studyflash/internal/repository/sqlite"
	"github.com/avelar/studyflash/internal/services"
	"github.com/avelar/studyflash/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("StudyFlash Server Starting")
	log.Info("===========================================")
	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("flashcards_per_session=%d", cfg.FlashcardsPerSession)
	log.Debug("questions_per_session=%d", cfg.QuestionsPerSession)
	log.Debug("ingest_worker_count=%d", cfg.IngestWorkerCount)
	log.Debug("ingest_queue_size=%d", cfg.IngestQueueSize)
	log.Debug("generation_timeout_seconds=%d", cfg.GenerationTimeoutSec)

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Generation provider
	provider, err := llm.NewGroqProvider(llm.GroqConfig{
		APIKey:  cfg.GroqAPIKey,
		BaseURL: cfg.GroqBaseURL,
		Model:   cfg.GroqModel,
		Timeout: time.Duration(cfg.GenerationTimeoutSec) * time.Second,
	})
	if err != nil {
		log.Error("failed to create generation provider: %v", err)
		os.Exit(1)
	}
	log.Info("generation provider ready: model=%s", provider.ModelID())

	// Repositories
	sessionRepo := sqlite.NewSessionRepository(database.DB)
	documentRepo := sqlite.NewDocumentRepository(database.DB)
	statsRepo := sqlite.NewStatsRepository(database.DB)

	// Background workers
	pool := worker.NewPool(cfg.IngestWorkerCount, cfg.IngestQueueSize)
	queue := jobs.NewWorkerQueue(pool, documentRepo, statsRepo)

	// Services
	gen := generator.New(provider)
	sessionService := services.NewSessionService(
		sessionRepo, documentRepo, gen, queue,
		cfg.FlashcardsPerSession, cfg.QuestionsPerSession,
		time.Duration(cfg.GenerationTimeoutSec)*time.Second,
	)
	documentService := services.NewDocumentService(documentRepo, queue)
	statsService := services.NewStatsService(statsRepo)

	srv := &api.Server{
		DB:              database.DB,
		SessionService:  sessionService,
		DocumentService: documentService,
		StatsService:    statsService,
	}

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Duration(cfg.GenerationTimeoutSec) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	log.Info("received signal %v, shutting down", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	cancel()
	pool.Stop()
	log.Info("shutdown complete")
}
