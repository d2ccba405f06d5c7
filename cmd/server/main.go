package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/dealdesk/backend/config"
	"github.com/dealdesk/backend/internal/app"
	httpDelivery "github.com/dealdesk/backend/internal/delivery/http"
	"github.com/dealdesk/backend/internal/domain"
	"github.com/dealdesk/backend/internal/infrastructure/cache"
	"github.com/dealdesk/backend/internal/infrastructure/deals"
	"github.com/dealdesk/backend/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Server.Environment, cfg.Grouping.DebugLogging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("starting DealDesk backend",
		zap.String("version", "1.0.0"),
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.Duration("cache_ttl", cfg.Cache.TTL))

	// Initialize infrastructure dependencies
	memoryCache := cache.NewMemoryCache(cache.DefaultCleanupInterval, logger.Named("cache"))
	defer memoryCache.Close()

	var dealSource domain.DealSource
	if cfg.Deals.BaseURL != "" {
		dealSource = deals.NewClient(cfg.Deals.BaseURL, cfg.Deals.APIKey, cfg.Deals.Timeout, cfg.RateLimit.Deals, logger)
		logger.Info("deal source configured", zap.String("base_url", cfg.Deals.BaseURL))
	} else {
		logger.Warn("deal source not configured, deal lookups will return 503")
	}

	// Initialize usecase layer
	groupingService, err := app.NewGroupingService(cfg, memoryCache, dealSource, logger)
	if err != nil {
		return err
	}

	defaults := groupingService.Defaults()
	logger.Info("grouping configured",
		zap.Float64("threshold", defaults.Threshold),
		zap.String("mode", string(defaults.Mode)),
		zap.String("empty_names", string(defaults.EmptyNames)),
		zap.Bool("debug", cfg.Grouping.DebugLogging))

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(groupingService, logger)
	router := httpDelivery.SetupRouter(cfg, handler, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
