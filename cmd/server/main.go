package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jgu1lherme/crm-alternativa/internal/config"
	"github.com/jgu1lherme/crm-alternativa/internal/db"
	"github.com/jgu1lherme/crm-alternativa/internal/repository"
	"github.com/jgu1lherme/crm-alternativa/internal/router"
	"github.com/jgu1lherme/crm-alternativa/internal/services"
	"github.com/jgu1lherme/crm-alternativa/internal/storage"
	"github.com/jgu1lherme/crm-alternativa/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)

	// Session-state database
	database, err := db.NewSQLiteDB(cfg.DatabaseFile)
	if err != nil {
		logger.Fatal("Failed to open database", "error", err)
	}
	defer database.Close()

	if err := db.RunMigrations(cfg.DatabaseFile, cfg.MigrationsPath); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	// Object storage for upload/artifact bytes
	store, err := storage.NewS3Storage(context.Background(), storage.Options{
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		Bucket:          cfg.S3BucketName,
		UseSSL:          cfg.S3UseSSL,
	})
	if err != nil {
		logger.Fatal("Failed to initialize object storage", "error", err)
	}

	// Feature service
	fileRepo := repository.NewFileRepository(database)
	featureService := services.NewFeatureService(fileRepo, store, cfg, logger)

	// Setup HTTP router
	handler := router.NewRouter(featureService, logger, cfg.MaxFileSize)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		logger.Info("Starting server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
