package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/panjf2000/ants/v2"

	"github.com/docuflow/docuflow-backend/internal/config"
	datamongo "github.com/docuflow/docuflow-backend/internal/data/mongo"
	"github.com/docuflow/docuflow-backend/internal/logger"
	"github.com/docuflow/docuflow-backend/internal/platform/persistence"
	"github.com/docuflow/docuflow-backend/internal/server"
	"github.com/docuflow/docuflow-backend/internal/server/service"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("server")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	// Initialize database with app context
	mongoDB, err := persistence.NewMongoDB(appCtx, log, &cfg.MongoDB)
	if err != nil {
		log.Error("Failed to initialize MongoDB", "error", err)
		os.Exit(1)
	}

	// Worker pool for export quality-check processing
	pool, err := ants.NewPool(cfg.WorkerPool.Size)
	if err != nil {
		log.Error("Failed to initialize worker pool", "error", err)
		os.Exit(1)
	}

	// Initialize repositories
	jobRepo := datamongo.NewJobRepository(log, mongoDB.Database())
	citiRepo := datamongo.NewCitiRepository(log, mongoDB.Database())
	quarantineRepo := datamongo.NewQuarantineRepository(log, mongoDB.Database())

	// Unique (Agreement Number, jobId) indexes back idempotent entry saves
	if err := citiRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to ensure citi data indexes", "error", err)
		os.Exit(1)
	}
	if err := quarantineRepo.EnsureIndexes(appCtx); err != nil {
		log.Error("Failed to ensure quarantine data indexes", "error", err)
		os.Exit(1)
	}

	// Initialize services
	jobService := service.NewJobService(log, jobRepo)
	entryService := service.NewEntryService(log, citiRepo, quarantineRepo)
	exportService := service.NewExportService(log, jobRepo, citiRepo, quarantineRepo, pool)

	// Initialize REST server
	srv := server.NewServer(log, cfg, jobService, entryService, exportService)
	log.Info("REST server initialized")

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := srv.Start(); err != nil {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case err := <-errChan:
		log.Error("Server error occurred", "error", err)
		serverErr = err
	}

	// Cancel the application context
	cancelAppCtx()

	// Create a shutdown context with timeout
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	// Graceful shutdown sequence
	log.Info("Starting graceful shutdown...")

	// Shutdown HTTP server
	if err = srv.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	// Release the worker pool
	pool.Release()

	if err = mongoDB.Close(shutdownCtx); err != nil {
		log.Error("Error closing MongoDB connection", "error", err)
	}

	// Final status
	if serverErr != nil {
		log.Error("HTTP server shutdown with errors", "error", serverErr)
	}
	if err != nil {
		log.Error("Server shutdown completed with errors")
	} else {
		log.Info("Server shutdown completed successfully")
	}
}
