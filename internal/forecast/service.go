package forecast

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vehicle-valuation/internal/errors"
	"github.com/vehicle-valuation/internal/storage"
	"github.com/vehicle-valuation/internal/types"
)

// observationWindowMonths is the trailing window of listings fed to the engine.
const observationWindowMonths = 12

// ValuationSource resolves the vehicle and point estimate for a forecast.
type ValuationSource interface {
	GetByID(ctx context.Context, id string) (*storage.Valuation, error)
}

// ListingSource provides historical price observations.
type ListingSource interface {
	PriceObservations(ctx context.Context, make, model string, since time.Time) ([]storage.PriceObservation, error)
}

// ResultCache holds computed projections for a short TTL.
type ResultCache interface {
	ForecastKey(make, model string) string
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
}

// Service resolves a valuation to its inputs and runs the engine, caching the
// result per make/model.
type Service struct {
	valuations ValuationSource
	listings   ListingSource
	cache      ResultCache
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates a new forecast service
func NewService(valuations ValuationSource, listings ListingSource, cache ResultCache, logger *zap.Logger) *Service {
	return &Service{
		valuations: valuations,
		listings:   listings,
		cache:      cache,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock replaces the service clock. Test hook.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ForValuation computes the price projection for a valuation record. Cache
// failures degrade to recomputation; they never fail the request.
func (s *Service) ForValuation(ctx context.Context, valuationID string) (*Projection, error) {
	if _, err := uuid.Parse(valuationID); err != nil {
		return nil, &types.ServiceError{
			Code:    "INVALID_VALUATION_ID",
			Message: "valuation id must be a valid UUID",
			Details: map[string]interface{}{"valuationId": valuationID},
		}
	}

	valuation, err := s.valuations.GetByID(ctx, valuationID)
	if err != nil {
		return nil, errors.Categorize(err)
	}

	cacheKey := s.cache.ForecastKey(valuation.Make, valuation.Model)
	var cached Projection
	hit, err := s.cache.Get(ctx, cacheKey, &cached)
	if err != nil {
		s.logger.Warn("forecast cache read failed",
			zap.String("key", cacheKey),
			zap.Error(err),
		)
	}
	if hit {
		return &cached, nil
	}

	since := s.now().AddDate(0, -observationWindowMonths, 0)
	rows, err := s.listings.PriceObservations(ctx, valuation.Make, valuation.Model, since)
	if err != nil {
		return nil, errors.NewPersistenceError("listing lookup", err)
	}

	observations := make([]Observation, len(rows))
	for i, row := range rows {
		observations[i] = Observation{Price: row.Price, Date: row.ListingDate}
	}

	projection, err := Compute(observations, valuation.EstimatedValue, DefaultHorizonMonths)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, projection); err != nil {
		s.logger.Warn("forecast cache write failed",
			zap.String("key", cacheKey),
			zap.Error(err),
		)
	}

	return projection, nil
}
