package storage

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vehicle-valuation/internal/types"
)

func newCacheMock(t *testing.T) (pgxmock.PgxPoolIface, *CacheRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewCacheRepository(mock)
}

func TestCacheGetHit(t *testing.T) {
	mock, repo := newCacheMock(t)

	fetchedAt := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	payload := []byte(`{"recalls":[]}`)

	mock.ExpectQuery(regexp.QuoteMeta("FROM recalls_cache")).
		WithArgs("honda|civic|2020").
		WillReturnRows(pgxmock.NewRows([]string{"lookup_key", "payload", "fetched_at"}).
			AddRow("honda|civic|2020", payload, fetchedAt))

	entry, err := repo.Get(context.Background(), types.SourceRecalls, "honda|civic|2020")
	require.NoError(t, err)
	require.NotNil(t, entry)

	assert.Equal(t, "honda|civic|2020", entry.Key)
	assert.JSONEq(t, `{"recalls":[]}`, string(entry.Payload))
	assert.Equal(t, fetchedAt, entry.FetchedAt)
}

func TestCacheGetMissReturnsNil(t *testing.T) {
	mock, repo := newCacheMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM census_cache")).
		WithArgs("90210").
		WillReturnError(pgx.ErrNoRows)

	entry, err := repo.Get(context.Background(), types.SourceCensus, "90210")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestCacheUpsert(t *testing.T) {
	mock, repo := newCacheMock(t)

	fetchedAt := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	payload := json.RawMessage(`{"lat":34.09}`)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO geocode_cache")).
		WithArgs("90210", payload, fetchedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Upsert(context.Background(), types.SourceGeocode, "90210", payload, fetchedAt)
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheUnknownSourceRejected(t *testing.T) {
	mock, repo := newCacheMock(t)

	_, err := repo.Get(context.Background(), types.Source("bogus"), "key")
	assert.Error(t, err)

	err = repo.Upsert(context.Background(), types.Source("bogus"), "key", nil, time.Now())
	assert.Error(t, err)

	// Nothing reached the database.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEverySourceHasACacheTable(t *testing.T) {
	for _, source := range types.AllSources() {
		table, err := tableFor(source)
		require.NoError(t, err, "source %s", source)
		assert.NotEmpty(t, table)
	}
}
