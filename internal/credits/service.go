// Package credits implements premium-credit consumption over the ledger. The
// ledger transaction is the source of truth for what a user has unlocked.
package credits

import (
	"context"

	"go.uber.org/zap"

	"github.com/vehicle-valuation/internal/errors"
	"github.com/vehicle-valuation/internal/storage"
)

// Ledger is the transactional credit store.
type Ledger interface {
	Consume(ctx context.Context, userID, valuationID string) (*storage.ConsumeOutcome, error)
	Grant(ctx context.Context, userID string, amount int) (int, error)
	Balance(ctx context.Context, userID string) (int, error)
}

// ValuationStore carries the best-effort premium flag write after a
// successful consumption.
type ValuationStore interface {
	MarkPremiumUnlocked(ctx context.Context, id string) error
}

// ConsumeResult is the user-facing outcome of a consumption attempt. A
// depleted balance is a clean failure, not an error.
type ConsumeResult struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	CreditsRemaining int    `json:"creditsRemaining"`
}

// Service coordinates credit consumption, grants and balance reads.
type Service struct {
	ledger     Ledger
	valuations ValuationStore
	logger     *zap.Logger
}

// NewService creates a new credits service
func NewService(ledger Ledger, valuations ValuationStore, logger *zap.Logger) *Service {
	return &Service{
		ledger:     ledger,
		valuations: valuations,
		logger:     logger,
	}
}

// Consume spends one credit to unlock premium content for a valuation. The
// decrement and the unlock record are one atomic transaction in the ledger;
// repeating the call for an already-unlocked valuation succeeds without
// spending another credit. After a successful unlock the valuation row is
// flagged best-effort: a failure there is logged, not surfaced, because the
// ledger already holds the truth.
func (s *Service) Consume(ctx context.Context, userID, valuationID string) (*ConsumeResult, error) {
	outcome, err := s.ledger.Consume(ctx, userID, valuationID)
	if err != nil {
		return nil, errors.NewPersistenceError("credit consumption", err)
	}

	if !outcome.Success {
		return &ConsumeResult{
			Success:          false,
			Message:          "No premium credits available",
			CreditsRemaining: outcome.CreditsRemaining,
		}, nil
	}

	if outcome.AlreadyUnlocked {
		return &ConsumeResult{
			Success:          true,
			Message:          "Premium content already unlocked for this valuation",
			CreditsRemaining: outcome.CreditsRemaining,
		}, nil
	}

	if err := s.valuations.MarkPremiumUnlocked(ctx, valuationID); err != nil {
		s.logger.Warn("failed to flag valuation as premium",
			zap.String("valuationId", valuationID),
			zap.String("userId", userID),
			zap.Error(err),
		)
	}

	return &ConsumeResult{
		Success:          true,
		Message:          "Premium content unlocked",
		CreditsRemaining: outcome.CreditsRemaining,
	}, nil
}

// Grant adds credits to a user's balance. Called by the payment collaborator
// after a completed purchase.
func (s *Service) Grant(ctx context.Context, userID string, amount int) (int, error) {
	remaining, err := s.ledger.Grant(ctx, userID, amount)
	if err != nil {
		return 0, errors.NewPersistenceError("credit grant", err)
	}

	s.logger.Info("credits granted",
		zap.String("userId", userID),
		zap.Int("amount", amount),
		zap.Int("balance", remaining),
	)

	return remaining, nil
}

// Balance returns the user's current credit balance.
func (s *Service) Balance(ctx context.Context, userID string) (int, error) {
	remaining, err := s.ledger.Balance(ctx, userID)
	if err != nil {
		return 0, errors.NewPersistenceError("balance lookup", err)
	}
	return remaining, nil
}
