package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/miit-portal/internal/models"
	"github.com/noah-isme/miit-portal/pkg/recordid"
)

const centerColumns = "id, c_reg, fullname, email, password_hash, inst, cen_adr, state, district, city, pincode, t_pc, staffs, phone, files, raw_body, status, created_at, updated_at"

// CenterMatchField names a column the center verification lookup can match on.
type CenterMatchField string

const (
	CenterMatchInst     CenterMatchField = "inst"
	CenterMatchEmail    CenterMatchField = "email"
	CenterMatchPhone    CenterMatchField = "phone"
	CenterMatchFullName CenterMatchField = "fullname"
)

// CenterRepository manages persistence for training centers.
type CenterRepository struct {
	db *sqlx.DB
}

// NewCenterRepository constructs a CenterRepository.
func NewCenterRepository(db *sqlx.DB) *CenterRepository {
	return &CenterRepository{db: db}
}

// Create inserts a new center.
func (r *CenterRepository) Create(ctx context.Context, center *models.Center) error {
	if center.ID == "" {
		center.ID = recordid.New()
	}
	if center.CReg == 0 {
		center.CReg = 1
	}
	if center.Status == "" {
		center.Status = models.CenterStatusPending
	}
	now := time.Now().UTC()
	if center.CreatedAt.IsZero() {
		center.CreatedAt = now
	}
	center.UpdatedAt = now
	const query = `INSERT INTO centers (id, c_reg, fullname, email, password_hash, inst, cen_adr, state, district, city, pincode, t_pc, staffs, phone, files, raw_body, status, created_at, updated_at)
        VALUES (:id, :c_reg, :fullname, :email, :password_hash, :inst, :cen_adr, :state, :district, :city, :pincode, :t_pc, :staffs, :phone, :files, :raw_body, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, center); err != nil {
		return fmt.Errorf("create center: %w", err)
	}
	return nil
}

// FindByID fetches a center by record id.
func (r *CenterRepository) FindByID(ctx context.Context, id string) (*models.Center, error) {
	var center models.Center
	query := "SELECT " + centerColumns + " FROM centers WHERE id = $1"
	if err := r.db.GetContext(ctx, &center, query, id); err != nil {
		return nil, err
	}
	return &center, nil
}

// FindByEmail fetches a center by its normalized email.
func (r *CenterRepository) FindByEmail(ctx context.Context, email string) (*models.Center, error) {
	var center models.Center
	query := "SELECT " + centerColumns + " FROM centers WHERE email = $1"
	if err := r.db.GetContext(ctx, &center, query, email); err != nil {
		return nil, err
	}
	return &center, nil
}

// FindFirstMatch returns the oldest center whose field matches term. Phone
// matches exactly, the other fields by case-insensitive substring.
func (r *CenterRepository) FindFirstMatch(ctx context.Context, field CenterMatchField, term string) (*models.Center, error) {
	var condition string
	var arg interface{}
	switch field {
	case CenterMatchPhone:
		condition, arg = "phone = $1", term
	case CenterMatchInst, CenterMatchEmail, CenterMatchFullName:
		condition, arg = string(field)+" ILIKE $1", containsPattern(term)
	default:
		return nil, fmt.Errorf("unsupported center match field %q", field)
	}
	var center models.Center
	query := "SELECT " + centerColumns + " FROM centers WHERE " + condition + " ORDER BY created_at, id LIMIT 1"
	if err := r.db.GetContext(ctx, &center, query, arg); err != nil {
		return nil, err
	}
	return &center, nil
}

// UpdateStatus moves a center to the given moderation state.
func (r *CenterRepository) UpdateStatus(ctx context.Context, id string, status models.CenterStatus) error {
	const query = `UPDATE centers SET status = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update center status: %w", err)
	}
	return requireAffected(result, "update center status")
}

// List returns centers for moderation, newest first.
func (r *CenterRepository) List(ctx context.Context, filter models.CenterFilter) ([]models.Center, int, error) {
	_, size, offset := models.PageWindow(filter.Page, filter.PageSize, 20, 100)
	var where whereBuilder
	if filter.Status != "" {
		where.add("status = " + where.bind(filter.Status))
	}
	where.search(filter.Search, "fullname", "email", "inst", "state")

	query := fmt.Sprintf("SELECT %s FROM centers%s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d", centerColumns, where.String(), size, offset)
	var centers []models.Center
	if err := r.db.SelectContext(ctx, &centers, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list centers: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM centers"+where.String(), where.args...); err != nil {
		return nil, 0, fmt.Errorf("count centers: %w", err)
	}
	return centers, total, nil
}

// ListApprovedByState returns approved centers whose state equals state ignoring case.
func (r *CenterRepository) ListApprovedByState(ctx context.Context, state string) ([]models.PublicCenter, error) {
	const query = `SELECT id, inst, cen_adr, state, phone FROM centers WHERE status = $1 AND LOWER(state) = LOWER($2) ORDER BY created_at DESC, id DESC`
	var centers []models.PublicCenter
	if err := r.db.SelectContext(ctx, &centers, query, models.CenterStatusApproved, state); err != nil {
		return nil, fmt.Errorf("list approved centers by state: %w", err)
	}
	return centers, nil
}

// PageApprovedByState returns one page of approved centers in a state plus the total.
func (r *CenterRepository) PageApprovedByState(ctx context.Context, state string, limit, offset int) ([]models.PublicCenter, int, error) {
	const base = `FROM centers WHERE status = $1 AND LOWER(state) = LOWER($2)`
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, models.CenterStatusApproved, state); err != nil {
		return nil, 0, fmt.Errorf("count public centers: %w", err)
	}
	query := "SELECT id, inst, fullname, cen_adr, city, district, state, phone, created_at " + base + " ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4"
	var centers []models.PublicCenter
	if err := r.db.SelectContext(ctx, &centers, query, models.CenterStatusApproved, state, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list public centers: %w", err)
	}
	return centers, total, nil
}

// CountByStatus aggregates centers per moderation state.
func (r *CenterRepository) CountByStatus(ctx context.Context) (models.StatusCounts, error) {
	var rows []statusCount
	if err := r.db.SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS count FROM centers GROUP BY status`); err != nil {
		return nil, fmt.Errorf("count centers by status: %w", err)
	}
	counts := models.StatusCounts{}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// Recent returns the newest centers.
func (r *CenterRepository) Recent(ctx context.Context, limit int) ([]models.Center, error) {
	var centers []models.Center
	query := "SELECT " + centerColumns + " FROM centers ORDER BY created_at DESC, id DESC LIMIT $1"
	if err := r.db.SelectContext(ctx, &centers, query, limit); err != nil {
		return nil, fmt.Errorf("recent centers: %w", err)
	}
	return centers, nil
}

// CountByState returns the states with the most centers.
func (r *CenterRepository) CountByState(ctx context.Context, limit int) ([]models.StateCount, error) {
	const query = `SELECT state, COUNT(*) AS count,
        COUNT(*) FILTER (WHERE status = 'approved') AS approved,
        COUNT(*) FILTER (WHERE status = 'pending') AS pending
        FROM centers GROUP BY state ORDER BY count DESC, state ASC LIMIT $1`
	var states []models.StateCount
	if err := r.db.SelectContext(ctx, &states, query, limit); err != nil {
		return nil, fmt.Errorf("count centers by state: %w", err)
	}
	return states, nil
}
