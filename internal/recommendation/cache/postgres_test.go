package cache

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"automation-advisor/internal/common/database"
	"automation-advisor/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostgresStore(t *testing.T, ttl time.Duration) (*PostgresStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(database.NewPostgresFromDB(db), ttl), mock
}

func TestPostgresStore_Get(t *testing.T) {
	store, mock := newPostgresStore(t, 0)
	ctx := context.Background()
	key := models.CacheKey{EntityID: "e1", Kind: models.KindTimeline, Scenario: models.ScenarioBalanced, Provider: "openai"}
	generated := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(selectKeyed)).
		WithArgs("e1", "timeline", "balanced", "openai").
		WillReturnRows(sqlmock.NewRows([]string{"payload", "generated_at"}).AddRow([]byte(`{"a":1}`), generated))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, generated, got.GeneratedAt)
	assert.Equal(t, "openai", got.Provider)
	assert.JSONEq(t, `{"a":1}`, string(got.Payload))

	mock.ExpectQuery(regexp.QuoteMeta(selectKeyed)).
		WithArgs("e1", "timeline", "balanced", "openai").
		WillReturnError(sql.ErrNoRows)
	got, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got)

	mock.ExpectQuery(regexp.QuoteMeta(selectKeyed)).
		WithArgs("e1", "timeline", "balanced", "openai").
		WillReturnError(errors.New("connection lost"))
	_, err = store.Get(ctx, key)
	assert.ErrorContains(t, err, "connection lost")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetLatest_Expired(t *testing.T) {
	store, mock := newPostgresStore(t, time.Hour)
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	mock.ExpectQuery(regexp.QuoteMeta(selectLatest)).
		WithArgs("e1", "workflows").
		WillReturnRows(sqlmock.NewRows([]string{"scenario", "provider", "payload", "generated_at"}).
			AddRow("", "anthropic", []byte(`{}`), now.Add(-2*time.Hour)))

	got, err := store.GetLatest(context.Background(), "e1", models.KindWorkflows)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Put(t *testing.T) {
	store, mock := newPostgresStore(t, 0)
	entry := models.CacheEntry{
		Key:         models.CacheKey{EntityID: "e1", Kind: models.KindTimeline, Scenario: models.ScenarioAggressive, Provider: "gemini"},
		Payload:     []byte(`{"phases":[]}`),
		GeneratedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	args := []driver.Value{"e1", "timeline", "aggressive", "gemini", []byte(`{"phases":[]}`), entry.GeneratedAt}

	t.Run("writes both tables", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(upsertKeyed)).WithArgs(args...).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(upsertLatest)).WithArgs(args...).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, store.Put(context.Background(), entry))
	})

	t.Run("rolls back when the legacy write fails", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta(upsertKeyed)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta(upsertLatest)).WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		err := store.Put(context.Background(), entry)
		assert.ErrorContains(t, err, "disk full")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_EnsureSchema(t *testing.T) {
	store, mock := newPostgresStore(t, 0)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS recommendation_cache").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
