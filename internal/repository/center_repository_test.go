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
	"github.com/noah-isme/miit-portal/pkg/recordid"
)

func centerRows() *sqlmock.Rows {
	return sqlmock.NewRows(columns(centerColumns))
}

func addCenterRow(rows *sqlmock.Rows, id, inst, email string, created time.Time) *sqlmock.Rows {
	return rows.AddRow(id, 1, "Owner", email, "hash", inst, "Main Road", "Delhi", "Central", "New Delhi", "110001", "5", "3", "9876543210",
		[]byte(`{"ch_img":"uploads/1-photo.png"}`), []byte(`{}`), "approved", created, created)
}

func TestCenterRepositoryCreateAssignsDefaults(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCenterRepository(db)

	mock.ExpectExec("INSERT INTO centers").
		WithArgs(anyArgs(19)...).
		WillReturnResult(sqlmock.NewResult(1, 1))

	center := &models.Center{FullName: "Owner", Email: "owner@example.com", PasswordHash: "hash", Phone: "9876543210"}
	require.NoError(t, repo.Create(context.Background(), center))
	assert.True(t, recordid.Valid(center.ID))
	assert.Equal(t, 1, center.CReg)
	assert.Equal(t, models.CenterStatusPending, center.Status)
	assert.False(t, center.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCenterRepositoryFindFirstMatch(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCenterRepository(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + centerColumns + " FROM centers WHERE inst ILIKE $1 ORDER BY created_at, id LIMIT 1")).
		WithArgs("%tech\\_hub%").
		WillReturnRows(addCenterRow(centerRows(), "c1", "Tech_Hub", "a@example.com", now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + centerColumns + " FROM centers WHERE phone = $1 ORDER BY created_at, id LIMIT 1")).
		WithArgs("9876543210").
		WillReturnError(sql.ErrNoRows)

	center, err := repo.FindFirstMatch(context.Background(), CenterMatchInst, "tech_hub")
	require.NoError(t, err)
	assert.Equal(t, "c1", center.ID)
	assert.Equal(t, "uploads/1-photo.png", center.Files[models.CenterFilePhoto])

	_, err = repo.FindFirstMatch(context.Background(), CenterMatchPhone, "9876543210")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	_, err = repo.FindFirstMatch(context.Background(), CenterMatchField("password_hash"), "x")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCenterRepositoryUpdateStatusMissing(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCenterRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE centers SET status = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("missing", models.CenterStatusApproved, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), "missing", models.CenterStatusApproved)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCenterRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCenterRepository(db)

	where := " WHERE status = $1 AND (fullname ILIKE $2 OR email ILIKE $2 OR inst ILIKE $2 OR state ILIKE $2)"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + centerColumns + " FROM centers" + where + " ORDER BY created_at DESC, id DESC LIMIT 20 OFFSET 20")).
		WithArgs("pending", "%delhi%").
		WillReturnRows(addCenterRow(centerRows(), "c1", "Inst", "a@example.com", time.Now()))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM centers" + where)).
		WithArgs("pending", "%delhi%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))

	centers, total, err := repo.List(context.Background(), models.CenterFilter{Status: "pending", Search: "delhi", Page: 2, PageSize: 20})
	require.NoError(t, err)
	assert.Len(t, centers, 1)
	assert.Equal(t, 21, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCenterRepositoryPageApprovedByState(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCenterRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM centers WHERE status = $1 AND LOWER(state) = LOWER($2)")).
		WithArgs(models.CenterStatusApproved, "Bihar").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, inst, fullname, cen_adr, city, district, state, phone, created_at FROM centers WHERE status = $1 AND LOWER(state) = LOWER($2) ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4")).
		WithArgs(models.CenterStatusApproved, "Bihar", 2, 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "inst", "fullname", "cen_adr", "city", "district", "state", "phone", "created_at"}).
			AddRow("c3", "Inst", "Owner", "Road", "Patna", "Patna", "Bihar", "9876543210", time.Now()))

	centers, total, err := repo.PageApprovedByState(context.Background(), "Bihar", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, centers, 1)
	assert.Equal(t, "Patna", centers[0].City)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCenterRepositoryAggregates(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewCenterRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) AS count FROM centers GROUP BY status")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).AddRow("approved", 4).AddRow("pending", 2))
	mock.ExpectQuery("FROM centers GROUP BY state ORDER BY count DESC, state ASC LIMIT \\$1").
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"state", "count", "approved", "pending"}).AddRow("Delhi", 5, 4, 1))

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, counts["approved"])
	assert.Equal(t, 6, counts.Total())

	states, err := repo.CountByState(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []models.StateCount{{State: "Delhi", Count: 5, Approved: 4, Pending: 1}}, states)
	assert.NoError(t, mock.ExpectationsWereMet())
}
