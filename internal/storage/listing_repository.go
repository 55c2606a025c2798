package storage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ListingRepository reads historical listing observations for the forecast.
type ListingRepository struct {
	db DB
}

// NewListingRepository creates a new listing repository
func NewListingRepository(db DB) *ListingRepository {
	return &ListingRepository{db: db}
}

// PriceObservations returns (price, listing date) pairs for a make/model with
// listing dates on or after since, oldest first.
func (r *ListingRepository) PriceObservations(ctx context.Context, make, model string, since time.Time) ([]PriceObservation, error) {
	query := `
		SELECT price, listing_date
		FROM listings
		WHERE LOWER(make) = $1 AND LOWER(model) = $2 AND listing_date >= $3
		ORDER BY listing_date ASC
	`

	rows, err := r.db.Query(ctx, query, strings.ToLower(make), strings.ToLower(model), since)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	var observations []PriceObservation
	for rows.Next() {
		var obs PriceObservation
		if err := rows.Scan(&obs.Price, &obs.ListingDate); err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		observations = append(observations, obs)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating listings: %w", err)
	}

	return observations, nil
}
