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

const certificateColumns = "id, certificate_id, verification_code, student_ref, student, course, center, certificate_type, grade, issue_date, valid_until, status, issued_by, metadata, created_at, updated_at"

// CertificateMatchField names a column the certificate verification lookup can match on.
type CertificateMatchField string

const (
	CertificateMatchID               CertificateMatchField = "certificate_id"
	CertificateMatchVerificationCode CertificateMatchField = "verification_code"
	CertificateMatchStudentID        CertificateMatchField = "student->>'studentId'"
)

// CertificateRepository manages persistence for issued certificates.
type CertificateRepository struct {
	db *sqlx.DB
}

// NewCertificateRepository constructs a CertificateRepository.
func NewCertificateRepository(db *sqlx.DB) *CertificateRepository {
	return &CertificateRepository{db: db}
}

// Create inserts a certificate. CertificateID and VerificationCode must already be assigned.
func (r *CertificateRepository) Create(ctx context.Context, cert *models.Certificate) error {
	if cert.ID == "" {
		cert.ID = recordid.New()
	}
	if cert.Status == "" {
		cert.Status = models.CertificateStatusActive
	}
	now := time.Now().UTC()
	if cert.IssueDate.IsZero() {
		cert.IssueDate = now
	}
	if cert.CreatedAt.IsZero() {
		cert.CreatedAt = now
	}
	cert.UpdatedAt = now
	const query = `INSERT INTO certificates (id, certificate_id, verification_code, student_ref, student, course, center, certificate_type, grade, issue_date, valid_until, status, issued_by, metadata, created_at, updated_at)
        VALUES (:id, :certificate_id, :verification_code, :student_ref, :student, :course, :center, :certificate_type, :grade, :issue_date, :valid_until, :status, :issued_by, :metadata, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, cert); err != nil {
		return fmt.Errorf("create certificate: %w", err)
	}
	return nil
}

// FindByID fetches a certificate by record id.
func (r *CertificateRepository) FindByID(ctx context.Context, id string) (*models.Certificate, error) {
	return r.getOne(ctx, "id = $1", id)
}

// FindByCertificateID fetches a certificate by exact certificateId.
func (r *CertificateRepository) FindByCertificateID(ctx context.Context, certificateID string) (*models.Certificate, error) {
	return r.getOne(ctx, "certificate_id = $1", certificateID)
}

func (r *CertificateRepository) getOne(ctx context.Context, condition string, arg interface{}) (*models.Certificate, error) {
	var cert models.Certificate
	query := "SELECT " + certificateColumns + " FROM certificates WHERE " + condition
	if err := r.db.GetContext(ctx, &cert, query, arg); err != nil {
		return nil, err
	}
	return &cert, nil
}

// FindFirstActiveMatch returns the oldest active certificate whose field contains term.
func (r *CertificateRepository) FindFirstActiveMatch(ctx context.Context, field CertificateMatchField, term string) (*models.Certificate, error) {
	switch field {
	case CertificateMatchID, CertificateMatchVerificationCode, CertificateMatchStudentID:
	default:
		return nil, fmt.Errorf("unsupported certificate match field %q", field)
	}
	var cert models.Certificate
	query := "SELECT " + certificateColumns + " FROM certificates WHERE status = $1 AND " + string(field) + " ILIKE $2 ORDER BY created_at, id LIMIT 1"
	if err := r.db.GetContext(ctx, &cert, query, models.CertificateStatusActive, containsPattern(term)); err != nil {
		return nil, err
	}
	return &cert, nil
}

// ExistsForStudent reports whether a certificate was already issued to the student record.
func (r *CertificateRepository) ExistsForStudent(ctx context.Context, studentRef string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM certificates WHERE student_ref = $1 LIMIT 1`, studentRef); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check student certificate: %w", err)
	}
	return true, nil
}

// CountCreatedBetween counts certificates created in [from, to).
func (r *CertificateRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	var count int
	const query = `SELECT COUNT(*) FROM certificates WHERE created_at >= $1 AND created_at < $2`
	if err := r.db.GetContext(ctx, &count, query, from, to); err != nil {
		return 0, fmt.Errorf("count certificates in window: %w", err)
	}
	return count, nil
}

// UpdateStatus changes the lifecycle state of a certificate by record id.
func (r *CertificateRepository) UpdateStatus(ctx context.Context, id string, status models.CertificateStatus) error {
	const query = `UPDATE certificates SET status = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update certificate status: %w", err)
	}
	return requireAffected(result, "update certificate status")
}

// ListByStudent returns a student's certificates, newest issue first.
func (r *CertificateRepository) ListByStudent(ctx context.Context, studentRef string) ([]models.Certificate, error) {
	var certs []models.Certificate
	query := "SELECT " + certificateColumns + " FROM certificates WHERE student_ref = $1 ORDER BY issue_date DESC, id DESC"
	if err := r.db.SelectContext(ctx, &certs, query, studentRef); err != nil {
		return nil, fmt.Errorf("list student certificates: %w", err)
	}
	return certs, nil
}

// List returns certificates matching the filter, newest first.
func (r *CertificateRepository) List(ctx context.Context, filter models.CertificateFilter) ([]models.Certificate, int, error) {
	_, size, offset := models.PageWindow(filter.Page, filter.PageSize, 20, 100)
	var where whereBuilder
	if filter.Status != "" {
		where.add("status = " + where.bind(filter.Status))
	}
	where.search(filter.Search, "certificate_id", "student->>'name'", "student->>'studentId'", "course->>'title'")

	query := fmt.Sprintf("SELECT %s FROM certificates%s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d", certificateColumns, where.String(), size, offset)
	var certs []models.Certificate
	if err := r.db.SelectContext(ctx, &certs, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list certificates: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM certificates"+where.String(), where.args...); err != nil {
		return nil, 0, fmt.Errorf("count certificates: %w", err)
	}
	return certs, total, nil
}

// Count returns the number of issued certificates.
func (r *CertificateRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM certificates`); err != nil {
		return 0, fmt.Errorf("count certificates: %w", err)
	}
	return count, nil
}
