package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/miit-portal/internal/models"
)

func TestContactQueryRepositoryExistsSince(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewContactQueryRepository(db)
	since := time.Now().Add(-5 * time.Minute)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM contact_queries WHERE (email = $1 OR phone = $2) AND created_at >= $3 LIMIT 1")).
		WithArgs("a@example.com", "9876543210", since).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsSince(context.Background(), "a@example.com", "9876543210", since)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactQueryRepositoryCreateDefaults(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewContactQueryRepository(db)

	mock.ExpectExec("INSERT INTO contact_queries").
		WithArgs(anyArgs(14)...).
		WillReturnResult(sqlmock.NewResult(1, 1))

	q := &models.ContactQuery{FullName: "A", Email: "a@example.com", Phone: "9876543210", Message: "hi"}
	require.NoError(t, repo.Create(context.Background(), q))
	assert.Equal(t, models.ContactStatusNew, q.Status)
	assert.Equal(t, models.ContactPriorityMedium, q.Priority)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactQueryRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewContactQueryRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM contact_queries WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "missing"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactQueryRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewContactQueryRepository(db)

	where := " WHERE status = $1 AND priority = $2 AND (fullname ILIKE $3 OR email ILIKE $3 OR phone ILIKE $3 OR message ILIKE $3)"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + contactQueryColumns + " FROM contact_queries" + where + " ORDER BY created_at DESC, id DESC LIMIT 20 OFFSET 0")).
		WithArgs("new", "high", "%fee%").
		WillReturnRows(sqlmock.NewRows(columns(contactQueryColumns)))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM contact_queries" + where)).
		WithArgs("new", "high", "%fee%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	queries, total, err := repo.List(context.Background(), models.ContactQueryFilter{Status: "new", Priority: "high", Search: "fee"})
	require.NoError(t, err)
	assert.Empty(t, queries)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCallbackRepositoryExistsSinceNone(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCallbackRepository(db)
	since := time.Now().Add(-24 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM callback_requests WHERE phone = $1 AND created_at >= $2 LIMIT 1")).
		WithArgs("9876543210", since).
		WillReturnError(sql.ErrNoRows)

	exists, err := repo.ExistsSince(context.Background(), "9876543210", since)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCallbackRepositoryUpdateStatusAndRecent(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCallbackRepository(db)
	now := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE callback_requests SET status = $2, notes = COALESCE(NULLIF($3, ''), notes), updated_at = $4 WHERE id = $1")).
		WithArgs("cb1", models.CallbackStatusCalled, "left voicemail", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + callbackColumns + " FROM callback_requests ORDER BY created_at DESC, id DESC LIMIT $1")).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(columns(callbackColumns)).AddRow("cb1", "9876543210", "127.0.0.1", "ua", "called", "", now, now))

	require.NoError(t, repo.UpdateStatus(context.Background(), "cb1", models.CallbackStatusCalled, "left voicemail"))
	recent, err := repo.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, models.CallbackStatusCalled, recent[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	var dest []string
	assert.Error(t, repo.Get(context.Background(), "k", &dest))
	assert.NoError(t, repo.Set(context.Background(), "k", []string{"a"}, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(context.Background(), "k*"))
	assert.NoError(t, repo.Close())
}
