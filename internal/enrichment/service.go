package enrichment

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/vehicle-valuation/internal/types"
)

// Freshness windows per source. Fixed policy, not configurable at call time.
var (
	censusPolicy        = Policy{Source: types.SourceCensus, TTL: types.TTLDays(365)}
	fuelEconomyPolicy   = Policy{Source: types.SourceFuelEconomy, TTL: types.TTLForever()}
	recallsPolicy       = Policy{Source: types.SourceRecalls, TTL: types.TTLDays(30)}
	theftCheckPolicy    = Policy{Source: types.SourceTheftCheck, TTL: types.TTLDays(7)}
	geocodePolicy       = Policy{Source: types.SourceGeocode, TTL: types.TTLDays(90)}
	zipValidationPolicy = Policy{Source: types.SourceZipValidation, TTL: types.TTLForever()}
)

// Provider interfaces the service depends on, one per external source.

// CensusAPI fetches ZIP-level demographics
type CensusAPI interface {
	Demographics(ctx context.Context, zip string) (json.RawMessage, error)
}

// FuelEconomyAPI fetches EPA fuel economy figures
type FuelEconomyAPI interface {
	VehicleOptions(ctx context.Context, make, model string, year int) (json.RawMessage, error)
}

// RecallAPI fetches NHTSA recall records
type RecallAPI interface {
	ByVehicle(ctx context.Context, make, model string, year int) (json.RawMessage, error)
}

// TheftCheckAPI fetches NICB VIN theft records
type TheftCheckAPI interface {
	CheckVIN(ctx context.Context, vin string) (json.RawMessage, error)
}

// GeocodeAPI resolves ZIP codes to coordinates
type GeocodeAPI interface {
	PostalCode(ctx context.Context, zip string) (json.RawMessage, error)
}

// ZipAPI validates ZIP codes
type ZipAPI interface {
	Lookup(ctx context.Context, zip string) (json.RawMessage, error)
}

// Service exposes one cache-backed lookup per external source. Keys are
// validated and normalized here, before any cache or adapter access.
type Service struct {
	fetcher     *Fetcher
	census      CensusAPI
	fuelEconomy FuelEconomyAPI
	recalls     RecallAPI
	theftCheck  TheftCheckAPI
	geocode     GeocodeAPI
	zip         ZipAPI
}

// NewService creates a new enrichment service
func NewService(
	store Store,
	logger *zap.Logger,
	census CensusAPI,
	fuelEconomy FuelEconomyAPI,
	recalls RecallAPI,
	theftCheck TheftCheckAPI,
	geocode GeocodeAPI,
	zip ZipAPI,
) *Service {
	return &Service{
		fetcher:     NewFetcher(store, logger),
		census:      census,
		fuelEconomy: fuelEconomy,
		recalls:     recalls,
		theftCheck:  theftCheck,
		geocode:     geocode,
		zip:         zip,
	}
}

// Fetcher returns the underlying fetcher. Test hook for clock injection.
func (s *Service) Fetcher() *Fetcher {
	return s.fetcher
}

// Demographics returns census demographics for a ZIP code.
func (s *Service) Demographics(ctx context.Context, zip string) (*Result, error) {
	if err := types.ValidateZIP(zip); err != nil {
		return nil, err
	}

	return s.fetcher.Fetch(ctx, censusPolicy, zip, func(ctx context.Context, key string) (json.RawMessage, error) {
		return s.census.Demographics(ctx, key)
	})
}

// FuelEconomy returns EPA fuel economy figures for a make/model/year.
func (s *Service) FuelEconomy(ctx context.Context, make, model string, year int) (*Result, error) {
	if err := types.ValidateVehicle(make, model, year); err != nil {
		return nil, err
	}

	key := types.VehicleKey(make, model, year)
	return s.fetcher.Fetch(ctx, fuelEconomyPolicy, key, func(ctx context.Context, _ string) (json.RawMessage, error) {
		return s.fuelEconomy.VehicleOptions(ctx, make, model, year)
	})
}

// Recalls returns NHTSA recall records for a make/model/year.
func (s *Service) Recalls(ctx context.Context, make, model string, year int) (*Result, error) {
	if err := types.ValidateVehicle(make, model, year); err != nil {
		return nil, err
	}

	key := types.VehicleKey(make, model, year)
	return s.fetcher.Fetch(ctx, recallsPolicy, key, func(ctx context.Context, _ string) (json.RawMessage, error) {
		return s.recalls.ByVehicle(ctx, make, model, year)
	})
}

// TheftCheck returns NICB theft and salvage records for a VIN.
func (s *Service) TheftCheck(ctx context.Context, vin string) (*Result, error) {
	if err := types.ValidateVIN(vin); err != nil {
		return nil, err
	}

	key := types.VINKey(vin)
	return s.fetcher.Fetch(ctx, theftCheckPolicy, key, func(ctx context.Context, k string) (json.RawMessage, error) {
		return s.theftCheck.CheckVIN(ctx, k)
	})
}

// Geocode resolves a ZIP code to coordinates.
func (s *Service) Geocode(ctx context.Context, zip string) (*Result, error) {
	if err := types.ValidateZIP(zip); err != nil {
		return nil, err
	}

	return s.fetcher.Fetch(ctx, geocodePolicy, zip, func(ctx context.Context, key string) (json.RawMessage, error) {
		return s.geocode.PostalCode(ctx, key)
	})
}

// ValidateZip checks a ZIP code against the postal database.
func (s *Service) ValidateZip(ctx context.Context, zip string) (*Result, error) {
	if err := types.ValidateZIP(zip); err != nil {
		return nil, err
	}

	return s.fetcher.Fetch(ctx, zipValidationPolicy, zip, func(ctx context.Context, key string) (json.RawMessage, error) {
		return s.zip.Lookup(ctx, key)
	})
}
