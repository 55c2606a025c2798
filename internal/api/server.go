package api

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vehicle-valuation/internal/credits"
	"github.com/vehicle-valuation/internal/enrichment"
	"github.com/vehicle-valuation/internal/forecast"
)

// EnrichmentService is the cache-backed external data facade.
type EnrichmentService interface {
	Demographics(ctx context.Context, zip string) (*enrichment.Result, error)
	FuelEconomy(ctx context.Context, make, model string, year int) (*enrichment.Result, error)
	Recalls(ctx context.Context, make, model string, year int) (*enrichment.Result, error)
	TheftCheck(ctx context.Context, vin string) (*enrichment.Result, error)
	Geocode(ctx context.Context, zip string) (*enrichment.Result, error)
	ValidateZip(ctx context.Context, zip string) (*enrichment.Result, error)
}

// CreditsService manages the premium-credit ledger.
type CreditsService interface {
	Consume(ctx context.Context, userID, valuationID string) (*credits.ConsumeResult, error)
	Grant(ctx context.Context, userID string, amount int) (int, error)
	Balance(ctx context.Context, userID string) (int, error)
}

// ForecastService computes price projections for valuations.
type ForecastService interface {
	ForValuation(ctx context.Context, valuationID string) (*forecast.Projection, error)
}

// Server holds the HTTP API and its dependencies.
type Server struct {
	router      *mux.Router
	enrichment  EnrichmentService
	credits     CreditsService
	forecast    ForecastService
	rateLimiter *RateLimiter
	logger      *zap.Logger
}

// NewServer creates a new API server
func NewServer(
	enrichmentSvc EnrichmentService,
	creditsSvc CreditsService,
	forecastSvc ForecastService,
	rateLimiter *RateLimiter,
	logger *zap.Logger,
) *Server {
	s := &Server{
		router:      mux.NewRouter(),
		enrichment:  enrichmentSvc,
		credits:     creditsSvc,
		forecast:    forecastSvc,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Use(LoggingMiddleware(s.logger))
	s.router.Use(RecoveryMiddleware(s.logger))
	s.router.Use(CORSMiddleware)
	s.router.Use(RateLimitMiddleware(s.rateLimiter))

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()

	// External data lookups, cache-backed
	api.HandleFunc("/enrichment/demographics/{zip}", s.handleDemographics).Methods(http.MethodGet)
	api.HandleFunc("/enrichment/fuel-economy", s.handleFuelEconomy).Methods(http.MethodGet)
	api.HandleFunc("/enrichment/recalls", s.handleRecalls).Methods(http.MethodGet)
	api.HandleFunc("/enrichment/theft-check/{vin}", s.handleTheftCheck).Methods(http.MethodGet)
	api.HandleFunc("/enrichment/geocode/{zip}", s.handleGeocode).Methods(http.MethodGet)
	api.HandleFunc("/enrichment/zip/{zip}", s.handleValidateZip).Methods(http.MethodGet)

	// Premium credits
	api.HandleFunc("/credits/consume", s.handleConsumeCredit).Methods(http.MethodPost)
	api.HandleFunc("/credits/grant", s.handleGrantCredits).Methods(http.MethodPost)
	api.HandleFunc("/credits/balance", s.handleCreditBalance).Methods(http.MethodGet)

	// Forecast
	api.HandleFunc("/valuations/{id}/forecast", s.handleForecast).Methods(http.MethodGet)
}

// Router returns the configured router. Exposed for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	s.logger.Info("starting API server", zap.String("addr", addr))
	return http.ListenAndServe(addr, s.router)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// userID extracts the caller identity, writing a 401 when absent.
func (s *Server) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "X-User-ID header is required", nil)
		return "", false
	}
	return userID, true
}
