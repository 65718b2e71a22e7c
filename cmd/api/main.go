package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campaign-engine/internal/config"
	"campaign-engine/internal/database"
	"campaign-engine/internal/handler"
	"campaign-engine/internal/repository"
	"campaign-engine/internal/router"
	"campaign-engine/internal/seed"
	"campaign-engine/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting campaign engine API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the campaign store
	var (
		campaignRepo   repository.CampaignRepository
		redemptionRepo repository.RedemptionRepository
	)

	switch cfg.Store.Driver {
	case config.StoreMemory:
		logger.Info().Msg("using in-memory campaign store")
		store := repository.NewMemoryStore(logger)
		campaignRepo = store
		redemptionRepo = store

	default:
		pool, err := database.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer pool.Close()

		if err := database.EnsureSchema(ctx, pool); err != nil {
			return fmt.Errorf("failed to prepare database schema: %w", err)
		}

		campaignRepo = repository.NewCampaignRepository(pool, logger)
		redemptionRepo = repository.NewRedemptionRepository(pool, logger)
	}

	// Initialize services
	campaignService := service.NewCampaignService(campaignRepo, redemptionRepo, logger)
	eligibilityService := service.NewEligibilityService(campaignRepo, logger)
	redemptionService := service.NewRedemptionService(campaignRepo, logger)

	// Seed campaign fixtures if configured, preferring S3 with a local
	// filesystem fallback.
	if cfg.Seed.Enabled {
		loader, source := seedSource(ctx, cfg.Seed, logger)
		if _, err := seed.Apply(ctx, loader, source, campaignService, logger); err != nil {
			logger.Warn().Err(err).Msg("campaign seeding failed, continuing without fixtures")
		}
	}

	// Initialize HTTP handlers and router
	campaignHandler := handler.NewCampaignHandler(campaignService, eligibilityService, redemptionService, logger)
	mux := router.New(campaignHandler, cfg.Auth.APIKey, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// seedSource picks the fixture loader: S3 when a bucket is configured and
// reachable, otherwise the local filesystem.
func seedSource(ctx context.Context, cfg config.SeedConfig, logger zerolog.Logger) (seed.Loader, string) {
	if cfg.S3Bucket != "" {
		s3Loader, err := seed.NewS3Loader(ctx, cfg.S3Bucket, cfg.S3Region, logger)
		if err == nil {
			return s3Loader, cfg.S3Key
		}
		logger.Warn().Err(err).Msg("failed to initialise S3 fixture loader, falling back to local file")
	}
	return seed.NewFileLoader(logger), cfg.FilePath
}
