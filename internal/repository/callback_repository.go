package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/miit-portal/internal/models"
	"github.com/noah-isme/miit-portal/pkg/recordid"
)

const callbackColumns = "id, phone, ip_address, user_agent, status, notes, created_at, updated_at"

// CallbackRepository manages persistence for callback requests.
type CallbackRepository struct {
	db *sqlx.DB
}

// NewCallbackRepository constructs a CallbackRepository.
func NewCallbackRepository(db *sqlx.DB) *CallbackRepository {
	return &CallbackRepository{db: db}
}

// Create inserts a callback request.
func (r *CallbackRepository) Create(ctx context.Context, cb *models.CallbackRequest) error {
	if cb.ID == "" {
		cb.ID = recordid.New()
	}
	if cb.Status == "" {
		cb.Status = models.CallbackStatusPending
	}
	now := time.Now().UTC()
	if cb.CreatedAt.IsZero() {
		cb.CreatedAt = now
	}
	cb.UpdatedAt = now
	const query = `INSERT INTO callback_requests (id, phone, ip_address, user_agent, status, notes, created_at, updated_at)
        VALUES (:id, :phone, :ip_address, :user_agent, :status, :notes, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, cb); err != nil {
		return fmt.Errorf("create callback request: %w", err)
	}
	return nil
}

// ExistsSince reports whether the phone requested a callback at or after since.
func (r *CallbackRepository) ExistsSince(ctx context.Context, phone string, since time.Time) (bool, error) {
	var exists int
	const query = `SELECT 1 FROM callback_requests WHERE phone = $1 AND created_at >= $2 LIMIT 1`
	if err := r.db.GetContext(ctx, &exists, query, phone, since); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check recent callback: %w", err)
	}
	return true, nil
}

// UpdateStatus changes the state of a callback request. Empty notes keep the stored notes.
func (r *CallbackRepository) UpdateStatus(ctx context.Context, id string, status models.CallbackStatus, notes string) error {
	const query = `UPDATE callback_requests SET status = $2, notes = COALESCE(NULLIF($3, ''), notes), updated_at = $4 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, notes, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update callback status: %w", err)
	}
	return requireAffected(result, "update callback status")
}

// List returns callback requests matching the filter, newest first.
func (r *CallbackRepository) List(ctx context.Context, filter models.CallbackFilter) ([]models.CallbackRequest, int, error) {
	_, size, offset := models.PageWindow(filter.Page, filter.PageSize, 20, 100)
	var where whereBuilder
	if filter.Status != "" {
		where.add("status = " + where.bind(filter.Status))
	}
	where.search(filter.Search, "phone")

	query := fmt.Sprintf("SELECT %s FROM callback_requests%s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d", callbackColumns, where.String(), size, offset)
	var callbacks []models.CallbackRequest
	if err := r.db.SelectContext(ctx, &callbacks, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list callbacks: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM callback_requests"+where.String(), where.args...); err != nil {
		return nil, 0, fmt.Errorf("count callbacks: %w", err)
	}
	return callbacks, total, nil
}

// CountByStatus aggregates callbacks per state.
func (r *CallbackRepository) CountByStatus(ctx context.Context) (models.StatusCounts, error) {
	var rows []statusCount
	if err := r.db.SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS count FROM callback_requests GROUP BY status`); err != nil {
		return nil, fmt.Errorf("count callbacks by status: %w", err)
	}
	counts := models.StatusCounts{}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// Recent returns the newest callback requests.
func (r *CallbackRepository) Recent(ctx context.Context, limit int) ([]models.CallbackRequest, error) {
	var callbacks []models.CallbackRequest
	query := "SELECT " + callbackColumns + " FROM callback_requests ORDER BY created_at DESC, id DESC LIMIT $1"
	if err := r.db.SelectContext(ctx, &callbacks, query, limit); err != nil {
		return nil, fmt.Errorf("recent callbacks: %w", err)
	}
	return callbacks, nil
}
