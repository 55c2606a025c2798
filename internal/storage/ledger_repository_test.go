package storage

import (
	"context"
	"regexp"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	existsQuery  = `SELECT EXISTS(SELECT 1 FROM premium_unlocks WHERE user_id = $1 AND valuation_id = $2)`
	ensureRow    = `INSERT INTO premium_credits (user_id, credits_remaining) VALUES ($1, 0) ON CONFLICT (user_id) DO NOTHING`
	decrementSQL = `UPDATE premium_credits`
	unlockInsert = `INSERT INTO premium_unlocks`
	balanceQuery = `SELECT credits_remaining FROM premium_credits WHERE user_id = $1`
)

func newLedgerMock(t *testing.T) (pgxmock.PgxPoolIface, *LedgerRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewLedgerRepository(mock)
}

func TestConsumeDecrementsAndRecordsUnlock(t *testing.T) {
	mock, repo := newLedgerMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(existsQuery)).
		WithArgs("user-1", "val-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta(ensureRow)).
		WithArgs("user-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery(regexp.QuoteMeta(decrementSQL)).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"credits_remaining"}).AddRow(2))
	mock.ExpectExec(regexp.QuoteMeta(unlockInsert)).
		WithArgs("user-1", "val-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	outcome, err := repo.Consume(context.Background(), "user-1", "val-1")
	require.NoError(t, err)

	assert.True(t, outcome.Success)
	assert.False(t, outcome.AlreadyUnlocked)
	assert.Equal(t, 2, outcome.CreditsRemaining)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeNoCreditsIsCleanFailure(t *testing.T) {
	mock, repo := newLedgerMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(existsQuery)).
		WithArgs("user-1", "val-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta(ensureRow)).
		WithArgs("user-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	// The conditional UPDATE matches no row when the balance is zero.
	mock.ExpectQuery(regexp.QuoteMeta(decrementSQL)).
		WithArgs("user-1").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()

	outcome, err := repo.Consume(context.Background(), "user-1", "val-1")
	require.NoError(t, err)

	assert.False(t, outcome.Success)
	assert.Equal(t, 0, outcome.CreditsRemaining)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeLosingUnlockRaceRollsBackDecrement(t *testing.T) {
	mock, repo := newLedgerMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(existsQuery)).
		WithArgs("user-1", "val-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec(regexp.QuoteMeta(ensureRow)).
		WithArgs("user-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery(regexp.QuoteMeta(decrementSQL)).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"credits_remaining"}).AddRow(1))
	// A concurrent transaction inserted the unlock after the exists check;
	// ON CONFLICT DO NOTHING reports zero rows affected.
	mock.ExpectExec(regexp.QuoteMeta(unlockInsert)).
		WithArgs("user-1", "val-1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectRollback()
	mock.ExpectQuery(regexp.QuoteMeta(balanceQuery)).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"credits_remaining"}).AddRow(2))

	outcome, err := repo.Consume(context.Background(), "user-1", "val-1")
	require.NoError(t, err)

	// The decrement never committed; the caller sees an idempotent unlock.
	assert.True(t, outcome.Success)
	assert.True(t, outcome.AlreadyUnlocked)
	assert.Equal(t, 2, outcome.CreditsRemaining)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConsumeAlreadyUnlockedSkipsDecrement(t *testing.T) {
	mock, repo := newLedgerMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(existsQuery)).
		WithArgs("user-1", "val-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta(balanceQuery)).
		WithArgs("user-1").
		WillReturnRows(pgxmock.NewRows([]string{"credits_remaining"}).AddRow(4))
	mock.ExpectCommit()

	outcome, err := repo.Consume(context.Background(), "user-1", "val-1")
	require.NoError(t, err)

	assert.True(t, outcome.Success)
	assert.True(t, outcome.AlreadyUnlocked)
	assert.Equal(t, 4, outcome.CreditsRemaining)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGrantReturnsNewBalance(t *testing.T) {
	mock, repo := newLedgerMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO premium_credits`)).
		WithArgs("user-1", 5).
		WillReturnRows(pgxmock.NewRows([]string{"credits_remaining"}).AddRow(8))

	balance, err := repo.Grant(context.Background(), "user-1", 5)
	require.NoError(t, err)
	assert.Equal(t, 8, balance)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGrantRejectsNonPositiveAmount(t *testing.T) {
	mock, repo := newLedgerMock(t)

	for _, amount := range []int{0, -3} {
		_, err := repo.Grant(context.Background(), "user-1", amount)
		assert.Error(t, err)
	}

	// Nothing reached the database.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceUnknownUserIsZero(t *testing.T) {
	mock, repo := newLedgerMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(balanceQuery)).
		WithArgs("nobody").
		WillReturnError(pgx.ErrNoRows)

	balance, err := repo.Balance(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, balance)
}

func TestIsUnlocked(t *testing.T) {
	mock, repo := newLedgerMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(existsQuery)).
		WithArgs("user-1", "val-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	unlocked, err := repo.IsUnlocked(context.Background(), "user-1", "val-1")
	require.NoError(t, err)
	assert.True(t, unlocked)
}
