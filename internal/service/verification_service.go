package service

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/miit-portal/internal/models"
	"github.com/noah-isme/miit-portal/internal/repository"
	appErrors "github.com/noah-isme/miit-portal/pkg/errors"
)

// Messages returned for unsuccessful lookups.
const (
	MsgCenterNotFound      = "Center not found. Please check the Center ID and try again."
	MsgStudentNotFound     = "Student not found. Please check the Student ID and try again."
	MsgCertificateNotFound = "Certificate not found or has been revoked. Please check the certificate number and try again."
	MsgCertificateExpired  = "Certificate has expired."
)

// displayDateLayout renders dates as d/m/yyyy.
const displayDateLayout = "2/1/2006"

var recordIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

var centerMatchOrder = []repository.CenterMatchField{
	repository.CenterMatchInst,
	repository.CenterMatchEmail,
	repository.CenterMatchPhone,
	repository.CenterMatchFullName,
}

var certificateMatchOrder = []repository.CertificateMatchField{
	repository.CertificateMatchID,
	repository.CertificateMatchVerificationCode,
	repository.CertificateMatchStudentID,
}

type verificationCenterRepository interface {
	FindByID(ctx context.Context, id string) (*models.Center, error)
	FindFirstMatch(ctx context.Context, field repository.CenterMatchField, term string) (*models.Center, error)
}

type verificationStudentRepository interface {
	FindByStudentID(ctx context.Context, studentID string) (*models.Student, error)
	FindFirstByEmailOrName(ctx context.Context, term string) (*models.Student, error)
}

type verificationCertificateRepository interface {
	FindFirstActiveMatch(ctx context.Context, field repository.CertificateMatchField, term string) (*models.Certificate, error)
}

// VerificationService resolves free-form lookup tokens into public projections
// of centers, students and certificates. Lookups are read-only and every
// search orders by creation time so a token keeps resolving to the same record.
type VerificationService struct {
	centers      verificationCenterRepository
	students     verificationStudentRepository
	certificates verificationCertificateRepository
	metrics      *MetricsService
	logger       *zap.Logger
	loc          *time.Location
	now          func() time.Time
}

// NewVerificationService constructs a VerificationService. Display dates are rendered in loc.
func NewVerificationService(centers verificationCenterRepository, students verificationStudentRepository, certificates verificationCertificateRepository, metrics *MetricsService, logger *zap.Logger, loc *time.Location) *VerificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &VerificationService{
		centers:      centers,
		students:     students,
		certificates: certificates,
		metrics:      metrics,
		logger:       logger,
		loc:          loc,
		now:          time.Now,
	}
}

// VerifyCenter looks a center up by record id, institute, email, phone or owner name.
func (s *VerificationService) VerifyCenter(ctx context.Context, raw string) (*models.VerificationResult, error) {
	query, err := cleanToken(raw, false, "Center ID is required", "Please enter a valid Center ID")
	if err != nil {
		s.metrics.RecordVerification(models.VerificationCenter, OutcomeInvalid)
		return nil, err
	}

	center, err := s.findCenter(ctx, query)
	if err != nil {
		s.metrics.RecordVerification(models.VerificationCenter, OutcomeError)
		return nil, internalError(err, "verify center")
	}
	result := &models.VerificationResult{Type: models.VerificationCenter, SearchQuery: query}
	if center == nil {
		s.metrics.RecordVerification(models.VerificationCenter, OutcomeNotFound)
		result.Error = MsgCenterNotFound
		return result, nil
	}

	s.metrics.RecordVerification(models.VerificationCenter, OutcomeFound)
	result.Success = true
	result.Data = models.CenterVerification{
		ID:           center.ID,
		Name:         center.FullName,
		Institute:    center.Inst,
		Email:        center.Email,
		Phone:        center.Phone,
		Location:     center.City + ", " + center.State,
		Status:       string(center.Status),
		RegisteredOn: s.displayDate(center.CreatedAt),
		Verified:     center.Status == models.CenterStatusApproved,
	}
	return result, nil
}

func (s *VerificationService) findCenter(ctx context.Context, query string) (*models.Center, error) {
	if recordIDPattern.MatchString(query) {
		center, err := s.centers.FindByID(ctx, strings.ToLower(query))
		if err == nil {
			return center, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}
	for _, field := range centerMatchOrder {
		center, err := s.centers.FindFirstMatch(ctx, field, query)
		if err == nil {
			return center, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}
	return nil, nil
}

// VerifyStudent looks a student up by exact studentId, then by email or name.
func (s *VerificationService) VerifyStudent(ctx context.Context, raw string) (*models.VerificationResult, error) {
	query, err := cleanToken(raw, true, "Student ID is required", "Please enter a valid Student ID")
	if err != nil {
		s.metrics.RecordVerification(models.VerificationStudent, OutcomeInvalid)
		return nil, err
	}

	student, err := s.findStudent(ctx, query)
	if err != nil {
		s.metrics.RecordVerification(models.VerificationStudent, OutcomeError)
		return nil, internalError(err, "verify student")
	}
	result := &models.VerificationResult{Type: models.VerificationStudent, SearchQuery: query}
	if student == nil {
		s.metrics.RecordVerification(models.VerificationStudent, OutcomeNotFound)
		result.Error = MsgStudentNotFound
		return result, nil
	}

	email := student.Email
	if email == "" {
		email = models.NotApplicable
	}
	s.metrics.RecordVerification(models.VerificationStudent, OutcomeFound)
	result.Success = true
	result.Data = models.StudentVerification{
		StudentID:      student.StudentID,
		Name:           student.Profile.Name,
		Email:          email,
		Phone:          student.Profile.Phone,
		Center:         student.Center.Inst,
		CenterLocation: student.Center.State,
		Course:         student.Course.Title,
		CourseType:     student.Course.Type,
		CourseDuration: student.Course.Duration,
		Status:         string(student.Status),
		EnrolledOn:     s.displayDate(student.CreatedAt),
		Verified:       student.Status == models.StudentStatusActive,
	}
	return result, nil
}

func (s *VerificationService) findStudent(ctx context.Context, query string) (*models.Student, error) {
	student, err := s.students.FindByStudentID(ctx, query)
	if err == nil {
		return student, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	student, err = s.students.FindFirstByEmailOrName(ctx, query)
	if err == nil {
		return student, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return nil, err
}

// VerifyCertificate looks an active certificate up by certificateId,
// verification code or studentId, and rejects expired ones.
func (s *VerificationService) VerifyCertificate(ctx context.Context, raw string) (*models.VerificationResult, error) {
	query, err := cleanToken(raw, true, "Certificate number is required", "Please enter a valid certificate number")
	if err != nil {
		s.metrics.RecordVerification(models.VerificationCertificate, OutcomeInvalid)
		return nil, err
	}

	cert, err := s.findCertificate(ctx, query)
	if err != nil {
		s.metrics.RecordVerification(models.VerificationCertificate, OutcomeError)
		return nil, internalError(err, "verify certificate")
	}
	result := &models.VerificationResult{Type: models.VerificationCertificate, SearchQuery: query}
	if cert == nil {
		s.metrics.RecordVerification(models.VerificationCertificate, OutcomeNotFound)
		result.Error = MsgCertificateNotFound
		return result, nil
	}
	if cert.Expired(s.now()) {
		s.metrics.RecordVerification(models.VerificationCertificate, OutcomeExpired)
		result.Error = MsgCertificateExpired
		return result, nil
	}

	s.metrics.RecordVerification(models.VerificationCertificate, OutcomeFound)
	result.Success = true
	result.Certificate = CertificateProjection(cert)
	return result, nil
}

func (s *VerificationService) findCertificate(ctx context.Context, query string) (*models.Certificate, error) {
	for _, field := range certificateMatchOrder {
		cert, err := s.certificates.FindFirstActiveMatch(ctx, field, query)
		if err == nil {
			return cert, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}
	return nil, nil
}

// CertificateProjection maps a certificate to its public verification view.
func CertificateProjection(cert *models.Certificate) *models.CertificateVerification {
	var notes *string
	if cert.Metadata.Notes != nil && *cert.Metadata.Notes != "" {
		value := *cert.Metadata.Notes
		notes = &value
	}
	return &models.CertificateVerification{
		CertificateID:    cert.CertificateID,
		VerificationCode: cert.VerificationCode,
		StudentName:      cert.Student.Name,
		StudentID:        cert.Student.StudentID,
		StudentEmail:     cert.Student.Email,
		Course:           cert.Course.Title,
		CourseType:       cert.Course.Type,
		Duration:         cert.Course.Duration,
		Center:           cert.Center.Inst,
		CenterLocation:   cert.Center.State,
		CertificateType:  string(cert.CertificateType),
		Grade:            cert.Grade,
		IssueDate:        cert.IssueDate,
		ValidUntil:       cert.ValidUntil,
		IssuedBy:         cert.IssuedBy,
		Status:           string(cert.Status),
		Notes:            notes,
	}
}

func (s *VerificationService) displayDate(t time.Time) string {
	return t.In(s.loc).Format(displayDateLayout)
}

// cleanToken trims raw and optionally uppercases it. Missing and blank input
// are rejected with distinct messages.
func cleanToken(raw string, upper bool, missing, blank string) (string, error) {
	if raw == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, missing)
	}
	token := strings.TrimSpace(raw)
	if token == "" {
		return "", appErrors.Clone(appErrors.ErrValidation, blank)
	}
	if upper {
		token = strings.ToUpper(token)
	}
	return token, nil
}
