package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vehicle-valuation/internal/types"
)

// ValuationRepository reads valuation records owned by the surrounding
// product and carries the best-effort premium flag write.
type ValuationRepository struct {
	db DB
}

// NewValuationRepository creates a new valuation repository
func NewValuationRepository(db DB) *ValuationRepository {
	return &ValuationRepository{db: db}
}

// GetByID retrieves a valuation record
func (r *ValuationRepository) GetByID(ctx context.Context, id string) (*Valuation, error) {
	query := `
		SELECT id, user_id, make, model, year, estimated_value, premium_unlocked, created_at
		FROM valuations
		WHERE id = $1
	`

	var v Valuation
	err := r.db.QueryRow(ctx, query, id).Scan(
		&v.ID,
		&v.UserID,
		&v.Make,
		&v.Model,
		&v.Year,
		&v.EstimatedValue,
		&v.PremiumUnlocked,
		&v.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &types.ServiceError{
				Code:    "VALUATION_NOT_FOUND",
				Message: fmt.Sprintf("valuation not found: %s", id),
				Details: map[string]interface{}{"valuationId": id},
			}
		}
		return nil, fmt.Errorf("failed to get valuation: %w", err)
	}

	return &v, nil
}

// MarkPremiumUnlocked flags the valuation row as premium-unlocked. The ledger
// is the source of truth; this write is best-effort.
func (r *ValuationRepository) MarkPremiumUnlocked(ctx context.Context, id string) error {
	result, err := r.db.Exec(ctx,
		`UPDATE valuations SET premium_unlocked = TRUE WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark valuation premium: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("valuation not found: %s", id)
	}

	return nil
}
