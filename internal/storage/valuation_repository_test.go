package storage

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vehicle-valuation/internal/types"
)

func TestValuationGetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewValuationRepository(mock)
	createdAt := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM valuations")).
		WithArgs("val-1").
		WillReturnRows(pgxmock.NewRows(
			[]string{"id", "user_id", "make", "model", "year", "estimated_value", "premium_unlocked", "created_at"},
		).AddRow("val-1", "user-1", "Honda", "Civic", 2020, 18000.0, false, createdAt))

	v, err := repo.GetByID(context.Background(), "val-1")
	require.NoError(t, err)

	assert.Equal(t, "Honda", v.Make)
	assert.Equal(t, 18000.0, v.EstimatedValue)
	assert.False(t, v.PremiumUnlocked)
}

func TestValuationGetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewValuationRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("FROM valuations")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.GetByID(context.Background(), "missing")
	require.Error(t, err)

	var svcErr *types.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "VALUATION_NOT_FOUND", svcErr.Code)
}

func TestMarkPremiumUnlocked(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewValuationRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE valuations SET premium_unlocked = TRUE")).
		WithArgs("val-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.MarkPremiumUnlocked(context.Background(), "val-1"))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE valuations SET premium_unlocked = TRUE")).
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	assert.Error(t, repo.MarkPremiumUnlocked(context.Background(), "missing"))
}

func TestPriceObservationsNormalizesAndOrders(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewListingRepository(mock)
	since := time.Date(2025, time.August, 15, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM listings")).
		WithArgs("honda", "civic", since).
		WillReturnRows(pgxmock.NewRows([]string{"price", "listing_date"}).
			AddRow(17000.0, since.AddDate(0, 1, 0)).
			AddRow(17500.0, since.AddDate(0, 2, 0)))

	obs, err := repo.PriceObservations(context.Background(), "Honda", "Civic", since)
	require.NoError(t, err)

	require.Len(t, obs, 2)
	assert.Equal(t, 17000.0, obs[0].Price)
	assert.True(t, obs[0].ListingDate.Before(obs[1].ListingDate))

	assert.NoError(t, mock.ExpectationsWereMet())
}
