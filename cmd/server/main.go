// Package main provides the API server entry point for the valuation service.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/vehicle-valuation/internal/adapter"
	"github.com/vehicle-valuation/internal/api"
	"github.com/vehicle-valuation/internal/config"
	"github.com/vehicle-valuation/internal/credits"
	"github.com/vehicle-valuation/internal/enrichment"
	"github.com/vehicle-valuation/internal/forecast"
	"github.com/vehicle-valuation/internal/logging"
	"github.com/vehicle-valuation/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.Init(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logger.Sync() // nolint:errcheck

	logger.Info("valuation service starting",
		zap.String("level", cfg.Logging.Level),
		zap.String("format", cfg.Logging.Format),
	)

	// Database connections
	postgres, err := storage.NewPostgresDB(&cfg.Database.Postgres)
	if err != nil {
		logger.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer postgres.Close()

	redis, err := storage.NewRedisCache(&cfg.Database.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redis.Close()

	logger.Info("database connections established")

	// External source clients
	srcs := cfg.Sources
	census := adapter.NewCensusClient(srcs.CensusBaseURL, srcs.CensusAPIKey, srcs.RequestTimeout, srcs.RequestsPerSecond)
	fuelEconomy := adapter.NewFuelEconomyClient(srcs.FuelEconomyBaseURL, srcs.RequestTimeout, srcs.RequestsPerSecond)
	recalls := adapter.NewRecallClient(srcs.RecallsBaseURL, srcs.RequestTimeout, srcs.RequestsPerSecond)
	theftCheck := adapter.NewTheftCheckClient(srcs.TheftCheckBaseURL, srcs.RequestTimeout, srcs.RequestsPerSecond)
	geocode := adapter.NewGeocodeClient(srcs.GeocodeBaseURL, srcs.RequestTimeout, srcs.RequestsPerSecond)
	zipClient := adapter.NewZipClient(srcs.ZipBaseURL, srcs.RequestTimeout, srcs.RequestsPerSecond)

	// Repositories
	pool := postgres.Pool()
	cacheRepo := storage.NewCacheRepository(pool)
	ledgerRepo := storage.NewLedgerRepository(pool)
	valuationRepo := storage.NewValuationRepository(pool)
	listingRepo := storage.NewListingRepository(pool)
	resultCache := storage.NewResultCache(redis, cfg.Forecast.ResultCacheTTL)

	// Services
	enrichmentSvc := enrichment.NewService(cacheRepo, logger,
		census, fuelEconomy, recalls, theftCheck, geocode, zipClient)
	creditsSvc := credits.NewService(ledgerRepo, valuationRepo, logger)
	forecastSvc := forecast.NewService(valuationRepo, listingRepo, resultCache, logger)

	rateLimiter := api.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	server := api.NewServer(enrichmentSvc, creditsSvc, forecastSvc, rateLimiter, logger)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("API server listening", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("API server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}

	logger.Info("server stopped")
}
