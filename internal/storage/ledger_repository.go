package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// ConsumeOutcome is the result of one credit consumption attempt.
type ConsumeOutcome struct {
	Success          bool
	AlreadyUnlocked  bool
	CreditsRemaining int
}

// LedgerRepository handles the premium-credit ledger and unlock markers.
type LedgerRepository struct {
	db DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Consume decrements the user's credit balance and records the unlock for a
// valuation as one transaction. The decrement is a storage-layer
// compare-and-swap: the UPDATE only matches when credits remain, so concurrent
// attempts for the same user cannot both pass. An already-unlocked pair
// succeeds without spending a second credit; the unlock insert carries ON
// CONFLICT DO NOTHING so a same-pair race rolls the loser's decrement back
// instead of surfacing a key violation.
func (r *LedgerRepository) Consume(ctx context.Context, userID, valuationID string) (*ConsumeOutcome, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx) // nolint:errcheck // no-op after commit
	}()

	var unlocked bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM premium_unlocks WHERE user_id = $1 AND valuation_id = $2)`,
		userID, valuationID,
	).Scan(&unlocked)
	if err != nil {
		return nil, fmt.Errorf("failed to check unlock record: %w", err)
	}

	if unlocked {
		remaining, err := balanceInTx(ctx, tx, userID)
		if err != nil {
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return &ConsumeOutcome{Success: true, AlreadyUnlocked: true, CreditsRemaining: remaining}, nil
	}

	// Ledger rows are created implicitly with a zero balance.
	_, err = tx.Exec(ctx,
		`INSERT INTO premium_credits (user_id, credits_remaining) VALUES ($1, 0) ON CONFLICT (user_id) DO NOTHING`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure ledger row: %w", err)
	}

	var remaining int
	err = tx.QueryRow(ctx,
		`UPDATE premium_credits
		 SET credits_remaining = credits_remaining - 1
		 WHERE user_id = $1 AND credits_remaining > 0
		 RETURNING credits_remaining`,
		userID,
	).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// No credits left. Clean failure, nothing to commit.
			return &ConsumeOutcome{Success: false, CreditsRemaining: 0}, nil
		}
		return nil, fmt.Errorf("failed to decrement credits: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`INSERT INTO premium_unlocks (user_id, valuation_id, unlocked_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_id, valuation_id) DO NOTHING`,
		userID, valuationID, time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert unlock record: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Lost a same-pair race: a concurrent transaction unlocked this
		// valuation after our exists check. Discard our decrement and report
		// the unlock.
		if err := tx.Rollback(ctx); err != nil {
			return nil, fmt.Errorf("failed to rollback transaction: %w", err)
		}
		remaining, err := r.Balance(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &ConsumeOutcome{Success: true, AlreadyUnlocked: true, CreditsRemaining: remaining}, nil
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &ConsumeOutcome{Success: true, CreditsRemaining: remaining}, nil
}

// Grant adds credits to a user's balance, creating the ledger row if needed.
// Returns the new balance.
func (r *LedgerRepository) Grant(ctx context.Context, userID string, amount int) (int, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("grant amount must be positive, got %d", amount)
	}

	var remaining int
	err := r.db.QueryRow(ctx,
		`INSERT INTO premium_credits (user_id, credits_remaining)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id)
		 DO UPDATE SET credits_remaining = premium_credits.credits_remaining + EXCLUDED.credits_remaining
		 RETURNING credits_remaining`,
		userID, amount,
	).Scan(&remaining)
	if err != nil {
		return 0, fmt.Errorf("failed to grant credits: %w", err)
	}

	return remaining, nil
}

// Balance returns the user's credit balance. Unknown users have zero credits.
func (r *LedgerRepository) Balance(ctx context.Context, userID string) (int, error) {
	var remaining int
	err := r.db.QueryRow(ctx,
		`SELECT credits_remaining FROM premium_credits WHERE user_id = $1`,
		userID,
	).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get credit balance: %w", err)
	}

	return remaining, nil
}

// IsUnlocked reports whether premium content is unlocked for a valuation.
func (r *LedgerRepository) IsUnlocked(ctx context.Context, userID, valuationID string) (bool, error) {
	var unlocked bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM premium_unlocks WHERE user_id = $1 AND valuation_id = $2)`,
		userID, valuationID,
	).Scan(&unlocked)
	if err != nil {
		return false, fmt.Errorf("failed to check unlock record: %w", err)
	}

	return unlocked, nil
}

// balanceInTx reads the balance inside an open transaction.
func balanceInTx(ctx context.Context, tx pgx.Tx, userID string) (int, error) {
	var remaining int
	err := tx.QueryRow(ctx,
		`SELECT credits_remaining FROM premium_credits WHERE user_id = $1`,
		userID,
	).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get credit balance: %w", err)
	}
	return remaining, nil
}
