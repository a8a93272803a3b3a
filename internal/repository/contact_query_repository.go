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

const contactQueryColumns = "id, fullname, email, phone, message, status, priority, ip_address, user_agent, admin_notes, assigned_to, resolved_at, created_at, updated_at"

// ContactQueryRepository manages persistence for contact form submissions.
type ContactQueryRepository struct {
	db *sqlx.DB
}

// NewContactQueryRepository constructs a ContactQueryRepository.
func NewContactQueryRepository(db *sqlx.DB) *ContactQueryRepository {
	return &ContactQueryRepository{db: db}
}

// Create inserts a contact query.
func (r *ContactQueryRepository) Create(ctx context.Context, q *models.ContactQuery) error {
	if q.ID == "" {
		q.ID = recordid.New()
	}
	if q.Status == "" {
		q.Status = models.ContactStatusNew
	}
	if q.Priority == "" {
		q.Priority = models.ContactPriorityMedium
	}
	now := time.Now().UTC()
	if q.CreatedAt.IsZero() {
		q.CreatedAt = now
	}
	q.UpdatedAt = now
	const query = `INSERT INTO contact_queries (id, fullname, email, phone, message, status, priority, ip_address, user_agent, admin_notes, assigned_to, resolved_at, created_at, updated_at)
        VALUES (:id, :fullname, :email, :phone, :message, :status, :priority, :ip_address, :user_agent, :admin_notes, :assigned_to, :resolved_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, q); err != nil {
		return fmt.Errorf("create contact query: %w", err)
	}
	return nil
}

// FindByID fetches a contact query by record id.
func (r *ContactQueryRepository) FindByID(ctx context.Context, id string) (*models.ContactQuery, error) {
	var q models.ContactQuery
	if err := r.db.GetContext(ctx, &q, "SELECT "+contactQueryColumns+" FROM contact_queries WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &q, nil
}

// ExistsSince reports whether a query with the email or phone was submitted at or after since.
func (r *ContactQueryRepository) ExistsSince(ctx context.Context, email, phone string, since time.Time) (bool, error) {
	const query = `SELECT 1 FROM contact_queries WHERE (email = $1 OR phone = $2) AND created_at >= $3 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, email, phone, since); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check recent contact query: %w", err)
	}
	return true, nil
}

// Update persists triage fields of a contact query.
func (r *ContactQueryRepository) Update(ctx context.Context, q *models.ContactQuery) error {
	q.UpdatedAt = time.Now().UTC()
	const query = `UPDATE contact_queries SET status = :status, priority = :priority, admin_notes = :admin_notes, assigned_to = :assigned_to, resolved_at = :resolved_at, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, q)
	if err != nil {
		return fmt.Errorf("update contact query: %w", err)
	}
	return requireAffected(result, "update contact query")
}

// Delete removes a contact query.
func (r *ContactQueryRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM contact_queries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contact query: %w", err)
	}
	return requireAffected(result, "delete contact query")
}

// List returns contact queries matching the filter, newest first.
func (r *ContactQueryRepository) List(ctx context.Context, filter models.ContactQueryFilter) ([]models.ContactQuery, int, error) {
	_, size, offset := models.PageWindow(filter.Page, filter.PageSize, 20, 100)
	var where whereBuilder
	if filter.Status != "" {
		where.add("status = " + where.bind(filter.Status))
	}
	if filter.Priority != "" {
		where.add("priority = " + where.bind(filter.Priority))
	}
	where.search(filter.Search, "fullname", "email", "phone", "message")

	query := fmt.Sprintf("SELECT %s FROM contact_queries%s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d", contactQueryColumns, where.String(), size, offset)
	var queries []models.ContactQuery
	if err := r.db.SelectContext(ctx, &queries, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list contact queries: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM contact_queries"+where.String(), where.args...); err != nil {
		return nil, 0, fmt.Errorf("count contact queries: %w", err)
	}
	return queries, total, nil
}

// CountByStatus aggregates contact queries per triage state.
func (r *ContactQueryRepository) CountByStatus(ctx context.Context) (models.StatusCounts, error) {
	var rows []statusCount
	if err := r.db.SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS count FROM contact_queries GROUP BY status`); err != nil {
		return nil, fmt.Errorf("count contact queries by status: %w", err)
	}
	counts := models.StatusCounts{}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
