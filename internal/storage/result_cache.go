package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResultCache caches computed responses (forecasts) in Redis with a short
// TTL. It is a hot-path optimization in front of the durable stores, never a
// source of truth.
type ResultCache struct {
	redis *RedisCache
	ttl   time.Duration
}

// NewResultCache creates a new result cache
func NewResultCache(r *RedisCache, ttl time.Duration) *ResultCache {
	return &ResultCache{redis: r, ttl: ttl}
}

// ForecastKey builds the cache key for a make/model forecast.
// Format: forecast:<make>:<model>, lowercased.
func (c *ResultCache) ForecastKey(make, model string) string {
	return fmt.Sprintf("forecast:%s:%s", strings.ToLower(make), strings.ToLower(model))
}

// Set stores a value as JSON with the configured TTL
func (c *ResultCache) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return c.redis.Set(ctx, key, data, c.ttl)
}

// Get retrieves a value and deserializes it into dest. Returns false on a
// cache miss.
func (c *ResultCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := c.redis.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get from cache: %w", err)
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached value: %w", err)
	}

	return true, nil
}

// TTL returns the configured TTL for this cache
func (c *ResultCache) TTL() time.Duration {
	return c.ttl
}
