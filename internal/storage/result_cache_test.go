package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResultCache(t *testing.T, ttl time.Duration) (*miniredis.Miniredis, *ResultCache) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewResultCache(NewRedisCacheWithClient(client), ttl)
}

type cachedForecast struct {
	Trend  string    `json:"trend"`
	Values []float64 `json:"values"`
}

func TestResultCacheRoundTrip(t *testing.T) {
	_, cache := newTestResultCache(t, time.Minute)
	ctx := context.Background()

	key := cache.ForecastKey("Honda", "Civic")
	assert.Equal(t, "forecast:honda:civic", key)

	stored := cachedForecast{Trend: "increasing", Values: []float64{100, 110}}
	require.NoError(t, cache.Set(ctx, key, stored))

	var got cachedForecast
	hit, err := cache.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, stored, got)
}

func TestResultCacheMiss(t *testing.T) {
	_, cache := newTestResultCache(t, time.Minute)

	var got cachedForecast
	hit, err := cache.Get(context.Background(), "forecast:nope:nope", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestResultCacheExpires(t *testing.T) {
	mr, cache := newTestResultCache(t, time.Minute)
	ctx := context.Background()

	key := cache.ForecastKey("Honda", "Civic")
	require.NoError(t, cache.Set(ctx, key, cachedForecast{Trend: "stable"}))

	mr.FastForward(2 * time.Minute)

	var got cachedForecast
	hit, err := cache.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestResultCacheCorruptEntryIsAnError(t *testing.T) {
	mr, cache := newTestResultCache(t, time.Minute)

	require.NoError(t, mr.Set("forecast:honda:civic", "{not json"))

	var got cachedForecast
	_, err := cache.Get(context.Background(), "forecast:honda:civic", &got)
	assert.Error(t, err)
}
