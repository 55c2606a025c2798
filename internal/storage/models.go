package storage

import (
	"encoding/json"
	"time"
)

// CacheEntry is one row of a per-source cache table. The payload schema is
// owned by the source, not by the cache.
type CacheEntry struct {
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// Valuation is a vehicle valuation record. The surrounding product owns its
// lifecycle; this service reads it for forecasts and flags premium unlocks.
type Valuation struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	Make            string    `json:"make"`
	Model           string    `json:"model"`
	Year            int       `json:"year"`
	EstimatedValue  float64   `json:"estimatedValue"`
	PremiumUnlocked bool      `json:"premiumUnlocked"`
	CreatedAt       time.Time `json:"createdAt"`
}

// PriceObservation is one historical listing observation feeding the forecast.
type PriceObservation struct {
	Price       float64   `json:"price"`
	ListingDate time.Time `json:"listingDate"`
}
