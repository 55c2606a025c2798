package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vehicle-valuation/internal/types"
)

// cacheTables maps each source to its cache table. Table names come from this
// fixed map, never from request input.
var cacheTables = map[types.Source]string{
	types.SourceCensus:        "census_cache",
	types.SourceFuelEconomy:   "fueleconomy_cache",
	types.SourceRecalls:       "recalls_cache",
	types.SourceTheftCheck:    "theftcheck_cache",
	types.SourceGeocode:       "geocode_cache",
	types.SourceZipValidation: "zipvalidation_cache",
}

// CacheRepository persists per-source cache entries. All tables share the same
// shape: lookup_key, payload, fetched_at.
type CacheRepository struct {
	db DB
}

// NewCacheRepository creates a new cache repository
func NewCacheRepository(db DB) *CacheRepository {
	return &CacheRepository{db: db}
}

// tableFor resolves the cache table for a source.
func tableFor(source types.Source) (string, error) {
	table, ok := cacheTables[source]
	if !ok {
		return "", fmt.Errorf("unknown cache source: %s", source)
	}
	return table, nil
}

// Get returns the cache entry for a key, or nil when the key has never been
// fetched.
func (r *CacheRepository) Get(ctx context.Context, source types.Source, key string) (*CacheEntry, error) {
	table, err := tableFor(source)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT lookup_key, payload, fetched_at
		FROM %s
		WHERE lookup_key = $1
	`, table)

	var entry CacheEntry
	err = r.db.QueryRow(ctx, query, key).Scan(&entry.Key, &entry.Payload, &entry.FetchedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cache entry for %s: %w", source, err)
	}

	return &entry, nil
}

// Upsert writes or refreshes the entry for a key. Payload and fetched_at are
// replaced together, never partially.
func (r *CacheRepository) Upsert(ctx context.Context, source types.Source, key string, payload json.RawMessage, fetchedAt time.Time) error {
	table, err := tableFor(source)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (lookup_key, payload, fetched_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (lookup_key)
		DO UPDATE SET payload = EXCLUDED.payload, fetched_at = EXCLUDED.fetched_at
	`, table)

	if _, err := r.db.Exec(ctx, query, key, payload, fetchedAt); err != nil {
		return fmt.Errorf("failed to upsert cache entry for %s: %w", source, err)
	}

	return nil
}
