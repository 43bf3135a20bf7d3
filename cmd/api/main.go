// Package main provides the entry point for the config service API server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/api"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/backend"
	"github.com/mrpraj7488/VidGro-Admin-sub001/internal/override"
	"github.com/mrpraj7488/VidGro-Admin-sub001/pkg/config"
	"github.com/mrpraj7488/VidGro-Admin-sub001/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Default().WithError(err).Error("failed to load configuration")
		os.Exit(1)
	}

	// Initialize logger
	level := slog.LevelInfo
	if cfg.LogLevel == "debug" {
		level = slog.LevelDebug
	}
	log := logger.New(level, cfg.LogJSON)

	// Restore runtime overrides persisted by a previous env-sync.
	overrides := override.NewStore(cfg.OverrideFilePath)
	if err := overrides.Load(); err != nil {
		log.Warn("failed to load override file", "path", cfg.OverrideFilePath, "error", err)
	}

	// Connect to the persistent backend when service credentials exist.
	var backendClient backend.Client
	if cfg.Backend.Configured() {
		backendLog := log.WithComponent("backend")
		pg, err := backend.NewPostgresClient(
			backend.DefaultPostgresConfig(cfg.Backend.DSN, cfg.Backend.ServiceKey),
			backendLog.Logger,
		)
		if err != nil {
			log.WithError(err).Error("failed to connect to config backend")
			os.Exit(1)
		}
		defer pg.Close()

		backendClient = backend.WithRetry(pg, backend.RetryConfig{
			CallTimeout: cfg.Backend.CallTimeout,
			MaxRetries:  cfg.Backend.MaxRetries,
			Backoff:     cfg.Backend.RetryBackoff,
		}, backendLog.Logger)
	} else {
		log.Warn("backend credentials not configured, admin operations disabled")
	}

	// Create the API server
	server := api.NewServer(cfg, backendClient, overrides, log.WithComponent("api").Logger)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	log.Info("starting config service",
		"host", cfg.APIHost,
		"port", cfg.APIPort,
		"mode", cfg.Mode,
	)

	if err := server.Start(ctx); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}

	// Give time for graceful shutdown
	time.Sleep(100 * time.Millisecond)
	log.Info("server stopped")
}
