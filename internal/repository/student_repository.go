package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/miit-portal/internal/models"
	"github.com/noah-isme/miit-portal/pkg/recordid"
)

const studentColumns = "id, student_id, study_mode, center, course, personal, email, password_hash, status, created_at, updated_at"

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Create inserts a new student. StudentID must already be assigned.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = recordid.New()
	}
	if student.StudyMode == "" {
		student.StudyMode = models.StudyModeOffline
	}
	if student.Status == "" {
		student.Status = models.StudentStatusActive
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	const query = `INSERT INTO students (id, student_id, study_mode, center, course, personal, email, password_hash, status, created_at, updated_at)
        VALUES (:id, :student_id, :study_mode, :center, :course, :personal, :email, :password_hash, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// FindByID fetches a student by record id.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	return r.getOne(ctx, "id = $1", id)
}

// FindByStudentID fetches a student by exact studentId.
func (r *StudentRepository) FindByStudentID(ctx context.Context, studentID string) (*models.Student, error) {
	return r.getOne(ctx, "student_id = $1", studentID)
}

// FindByEmail fetches a student by exact login email.
func (r *StudentRepository) FindByEmail(ctx context.Context, email string) (*models.Student, error) {
	return r.getOne(ctx, "email = $1", email)
}

// FindFirstByEmailOrName returns the oldest student whose email or name
// contains term, ignoring case.
func (r *StudentRepository) FindFirstByEmailOrName(ctx context.Context, term string) (*models.Student, error) {
	var student models.Student
	query := "SELECT " + studentColumns + " FROM students WHERE email ILIKE $1 OR personal->>'name' ILIKE $1 ORDER BY created_at, id LIMIT 1"
	if err := r.db.GetContext(ctx, &student, query, containsPattern(term)); err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *StudentRepository) getOne(ctx context.Context, condition string, arg interface{}) (*models.Student, error) {
	var student models.Student
	query := "SELECT " + studentColumns + " FROM students WHERE " + condition
	if err := r.db.GetContext(ctx, &student, query, arg); err != nil {
		return nil, err
	}
	return &student, nil
}

// CountCreatedBetween counts students created in [from, to).
func (r *StudentRepository) CountCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	var count int
	const query = `SELECT COUNT(*) FROM students WHERE created_at >= $1 AND created_at < $2`
	if err := r.db.GetContext(ctx, &count, query, from, to); err != nil {
		return 0, fmt.Errorf("count students in window: %w", err)
	}
	return count, nil
}

// List returns students matching the filter, newest first.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	_, size, offset := models.PageWindow(filter.Page, filter.PageSize, 20, 100)
	where := studentConditions(filter)

	query := fmt.Sprintf("SELECT %s FROM students%s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d", studentColumns, where.String(), size, offset)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, where.args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students"+where.String(), where.args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// ListAll streams every student matching the filter without paging, newest first.
func (r *StudentRepository) ListAll(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	where := studentConditions(filter)

	var students []models.Student
	query := "SELECT " + studentColumns + " FROM students" + where.String() + " ORDER BY created_at DESC, id DESC"
	if err := r.db.SelectContext(ctx, &students, query, where.args...); err != nil {
		return nil, fmt.Errorf("list all students: %w", err)
	}
	return students, nil
}

func studentConditions(filter models.StudentFilter) *whereBuilder {
	where := &whereBuilder{}
	if filter.Status != "" {
		where.add("status = " + where.bind(filter.Status))
	}
	if filter.CenterID != "" {
		where.add("center->>'id' = " + where.bind(filter.CenterID))
	}
	where.search(filter.Search, "student_id", "personal->>'name'", "email", "center->>'inst'")
	return where
}

// ListActive returns the newest active students.
func (r *StudentRepository) ListActive(ctx context.Context, limit int) ([]models.Student, error) {
	var students []models.Student
	query := "SELECT " + studentColumns + " FROM students WHERE status = $1 ORDER BY created_at DESC, id DESC LIMIT $2"
	if err := r.db.SelectContext(ctx, &students, query, models.StudentStatusActive, limit); err != nil {
		return nil, fmt.Errorf("list active students: %w", err)
	}
	return students, nil
}

// CountByStatus aggregates students per enrollment state.
func (r *StudentRepository) CountByStatus(ctx context.Context) (models.StatusCounts, error) {
	var rows []statusCount
	if err := r.db.SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS count FROM students GROUP BY status`); err != nil {
		return nil, fmt.Errorf("count students by status: %w", err)
	}
	counts := models.StatusCounts{}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// CountByCenter counts students enrolled under a center.
func (r *StudentRepository) CountByCenter(ctx context.Context, centerID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM students WHERE center->>'id' = $1`, centerID); err != nil {
		return 0, fmt.Errorf("count center students: %w", err)
	}
	return count, nil
}

// Recent returns the newest students.
func (r *StudentRepository) Recent(ctx context.Context, limit int) ([]models.Student, error) {
	var students []models.Student
	query := "SELECT " + studentColumns + " FROM students ORDER BY created_at DESC, id DESC LIMIT $1"
	if err := r.db.SelectContext(ctx, &students, query, limit); err != nil {
		return nil, fmt.Errorf("recent students: %w", err)
	}
	return students, nil
}
