// Package enrichment implements the cache-aside fetch protocol over the
// external data providers. Each source reads through a durable per-source
// cache table with its own freshness window.
package enrichment

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/vehicle-valuation/internal/errors"
	"github.com/vehicle-valuation/internal/storage"
	"github.com/vehicle-valuation/internal/types"
)

// Origin reports where a payload came from.
type Origin string

const (
	// OriginCache means the payload was served from a fresh cache entry
	OriginCache Origin = "cache"
	// OriginAPI means the payload was fetched from the external source
	OriginAPI Origin = "api"
)

// Store is the durable cache the fetcher reads through.
type Store interface {
	Get(ctx context.Context, source types.Source, key string) (*storage.CacheEntry, error)
	Upsert(ctx context.Context, source types.Source, key string, payload json.RawMessage, fetchedAt time.Time) error
}

// AdapterFunc fetches a payload for a normalized key from an external source.
type AdapterFunc func(ctx context.Context, key string) (json.RawMessage, error)

// Policy fixes the caching behavior of one source. Policies are set at
// construction, not per call.
type Policy struct {
	Source types.Source
	TTL    types.TTL
}

// Result is a fetched payload plus its origin.
type Result struct {
	Payload json.RawMessage
	Origin  Origin
}

// Fetcher orchestrates check-store, call-adapter, persist, return. The clock
// is injected so freshness is testable.
type Fetcher struct {
	store  Store
	now    func() time.Time
	logger *zap.Logger
}

// NewFetcher creates a new cache-aside fetcher
func NewFetcher(store Store, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		store:  store,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock replaces the fetcher's clock. Test hook.
func (f *Fetcher) WithClock(now func() time.Time) *Fetcher {
	f.now = now
	return f
}

// Fetch returns fresh data for a key while minimizing adapter calls.
//
// A cache entry younger than the policy's TTL is returned as-is. On a miss or
// an expired entry the adapter is called exactly once; its failure propagates
// and never falls back to a stale row. A successful fetch is written back
// best-effort: an upsert failure is logged and the fresh payload is still
// returned, because the cache is not authoritative.
//
// Keys must be validated and normalized by the caller before this point.
// Concurrent fetches for the same key are not serialized; the upsert is
// idempotent, so a duplicate adapter call is harmless.
func (f *Fetcher) Fetch(ctx context.Context, policy Policy, key string, adapter AdapterFunc) (*Result, error) {
	entry, err := f.store.Get(ctx, policy.Source, key)
	if err != nil {
		return nil, errors.NewPersistenceError("cache lookup", err)
	}

	now := f.now()
	if entry != nil && policy.TTL.Fresh(entry.FetchedAt, now) {
		return &Result{Payload: entry.Payload, Origin: OriginCache}, nil
	}

	payload, err := adapter(ctx, key)
	if err != nil {
		return nil, errors.Categorize(err)
	}

	if err := f.store.Upsert(ctx, policy.Source, key, payload, now); err != nil {
		f.logger.Warn("cache write failed, returning fresh payload anyway",
			zap.String("source", string(policy.Source)),
			zap.String("key", key),
			zap.Error(err),
		)
	}

	return &Result{Payload: payload, Origin: OriginAPI}, nil
}
