package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/miit-portal/internal/models"
	"github.com/noah-isme/miit-portal/pkg/database"
	appErrors "github.com/noah-isme/miit-portal/pkg/errors"
)

// Issuance messages.
const (
	MsgIssueStudentRequired   = "Student ID is required"
	MsgIssueStudentNotFound   = "Student not found"
	MsgCertificateIssued      = "Certificate issued successfully"
	MsgCertificateDuplicate   = "Certificate already issued for this student"
	MsgCertificateIDConflict  = "Certificate ID conflict, please try again"
	MsgCertificateRevoked     = "Certificate revoked successfully"
	MsgCertificateMissing     = "Certificate not found"
	MsgCertificateRevokedPDF  = "Certificate has been revoked"
	MsgInvalidCertificateType = "Invalid certificate type"
	MsgInvalidGrade           = "Invalid grade"
	MsgInvalidValidUntil      = "Invalid valid until date"
)

const superAdminIssuerName = "Super Admin"

type certificateRepository interface {
	Create(ctx context.Context, cert *models.Certificate) error
	FindByCertificateID(ctx context.Context, certificateID string) (*models.Certificate, error)
	ExistsForStudent(ctx context.Context, studentRef string) (bool, error)
	UpdateStatus(ctx context.Context, id string, status models.CertificateStatus) error
	ListByStudent(ctx context.Context, studentRef string) ([]models.Certificate, error)
	List(ctx context.Context, filter models.CertificateFilter) ([]models.Certificate, int, error)
}

type issuanceStudentLookup interface {
	FindByStudentID(ctx context.Context, studentID string) (*models.Student, error)
}

type certificateIDIssuer interface {
	NextCertificateID(ctx context.Context) (string, error)
	VerificationCode(certificateID string) (string, error)
}

type certificatePDFSource interface {
	Schedule(certificateID string)
	PDF(cert *models.Certificate) ([]byte, error)
}

// CertificateService implements issuance, revocation and certificate listings.
type CertificateService struct {
	certificates certificateRepository
	students     issuanceStudentLookup
	ids          certificateIDIssuer
	pdfs         certificatePDFSource
	metrics      *MetricsService
	logger       *zap.Logger
	issuedBy     string
	now          func() time.Time
}

// NewCertificateService constructs a CertificateService. issuedBy is printed on every certificate.
func NewCertificateService(certificates certificateRepository, students issuanceStudentLookup, ids certificateIDIssuer, pdfs certificatePDFSource, metrics *MetricsService, logger *zap.Logger, issuedBy string) *CertificateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if issuedBy == "" {
		issuedBy = "MIIT Skill Development Pvt Ltd"
	}
	return &CertificateService{
		certificates: certificates,
		students:     students,
		ids:          ids,
		pdfs:         pdfs,
		metrics:      metrics,
		logger:       logger,
		issuedBy:     issuedBy,
		now:          time.Now,
	}
}

// Issue creates the single certificate of a student.
func (s *CertificateService) Issue(ctx context.Context, req models.IssueCertificateRequest, issuerEmail string) (*models.IssueCertificateResult, error) {
	trimFields(&req.StudentID, &req.CertificateType, &req.Grade, &req.ValidUntil, &req.Notes)
	if req.StudentID == "" {
		return nil, validationError(MsgIssueStudentRequired)
	}
	certType, err := parseCertificateType(req.CertificateType)
	if err != nil {
		return nil, err
	}
	grade, err := parseGrade(req.Grade)
	if err != nil {
		return nil, err
	}
	validUntil, err := parseValidUntil(req.ValidUntil)
	if err != nil {
		return nil, err
	}

	student, err := s.students.FindByStudentID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, validationError(MsgIssueStudentNotFound)
		}
		return nil, internalError(err, "load student for issuance")
	}
	exists, err := s.certificates.ExistsForStudent(ctx, student.ID)
	if err != nil {
		return nil, internalError(err, "check existing certificate")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrDuplicate, MsgCertificateDuplicate)
	}

	certificateID, err := s.ids.NextCertificateID(ctx)
	if err != nil {
		return nil, internalError(err, "generate certificate id")
	}
	code, err := s.ids.VerificationCode(certificateID)
	if err != nil {
		return nil, internalError(err, "generate verification code")
	}

	var notes *string
	if req.Notes != "" {
		notes = &req.Notes
	}
	cert := &models.Certificate{
		CertificateID:    certificateID,
		VerificationCode: code,
		StudentRef:       student.ID,
		Student:          student.Snapshot(),
		Course: models.CourseSnapshot{
			ID:       student.Course.ID,
			Title:    student.Course.Title,
			Type:     student.Course.Type,
			Duration: student.Course.Duration,
		},
		Center: models.CenterSnapshot{
			ID:    student.Center.ID,
			Inst:  student.Center.Inst,
			State: student.Center.State,
		},
		CertificateType: certType,
		Grade:           grade,
		IssueDate:       s.now().UTC(),
		ValidUntil:      validUntil,
		Status:          models.CertificateStatusActive,
		IssuedBy:        s.issuedBy,
		Metadata: models.CertificateMetadata{
			IssuerName:  superAdminIssuerName,
			IssuerEmail: issuerEmail,
			Notes:       notes,
		},
	}
	if err := s.certificates.Create(ctx, cert); err != nil {
		return nil, s.classifyInsert(err)
	}
	s.metrics.RecordIdentifierIssued(IdentifierCertificate)
	s.logger.Info("certificate issued",
		zap.String("certificate_id", cert.CertificateID),
		zap.String("student_id", student.StudentID),
	)
	if s.pdfs != nil {
		s.pdfs.Schedule(cert.CertificateID)
	}

	return &models.IssueCertificateResult{
		OK:               true,
		Message:          MsgCertificateIssued,
		CertificateID:    cert.CertificateID,
		VerificationCode: cert.VerificationCode,
	}, nil
}

func (s *CertificateService) classifyInsert(err error) error {
	constraint, ok := database.UniqueViolation(err)
	if !ok {
		return internalError(err, "create certificate")
	}
	switch constraint {
	case database.ConstraintCertificateStudent:
		return appErrors.Clone(appErrors.ErrDuplicate, MsgCertificateDuplicate)
	case database.ConstraintCertificateID, database.ConstraintCertificateVerification:
		s.metrics.RecordIdentifierConflict(IdentifierCertificate)
		s.logger.Warn("certificate id collision", zap.String("constraint", constraint), zap.Error(err))
		return appErrors.Wrap(err, appErrors.ErrIDConflict.Code, appErrors.ErrIDConflict.Status, MsgCertificateIDConflict)
	default:
		return appErrors.Clone(appErrors.ErrDuplicate, "")
	}
}

func parseCertificateType(raw string) (models.CertificateType, error) {
	if raw == "" {
		return models.CertificateTypeCompletion, nil
	}
	switch t := models.CertificateType(strings.ToLower(raw)); t {
	case models.CertificateTypeCompletion, models.CertificateTypeExcellence,
		models.CertificateTypeParticipation, models.CertificateTypeAchievement:
		return t, nil
	}
	return "", validationError(MsgInvalidCertificateType)
}

func parseGrade(raw string) (string, error) {
	if raw == "" {
		return models.DefaultCertificateGrade, nil
	}
	for _, grade := range models.CertificateGrades {
		if strings.EqualFold(grade, raw) {
			return grade, nil
		}
	}
	return "", validationError(MsgInvalidGrade)
}

// parseValidUntil accepts a calendar date or an RFC 3339 timestamp.
func parseValidUntil(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, validationError(MsgInvalidValidUntil)
}

// Revoke marks the certificate with record id revoked.
func (s *CertificateService) Revoke(ctx context.Context, id string) (string, error) {
	if err := s.certificates.UpdateStatus(ctx, id, models.CertificateStatusRevoked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, MsgCertificateMissing)
		}
		return "", internalError(err, "revoke certificate")
	}
	s.logger.Info("certificate revoked", zap.String("id", id))
	return MsgCertificateRevoked, nil
}

// ListForStudent returns a student's certificates, newest issue first.
func (s *CertificateService) ListForStudent(ctx context.Context, studentRef string) ([]models.Certificate, error) {
	certs, err := s.certificates.ListByStudent(ctx, studentRef)
	if err != nil {
		return nil, internalError(err, "list student certificates")
	}
	if certs == nil {
		certs = []models.Certificate{}
	}
	return certs, nil
}

// List returns a page of certificates for administration.
func (s *CertificateService) List(ctx context.Context, filter models.CertificateFilter) ([]models.Certificate, *models.Pagination, error) {
	page, size, _ := models.PageWindow(filter.Page, filter.PageSize, 20, 100)
	filter.Page, filter.PageSize = page, size
	certs, total, err := s.certificates.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "list certificates")
	}
	return certs, models.NewPagination(page, size, total), nil
}

// StudentPDF returns the PDF of a certificate owned by studentRef.
func (s *CertificateService) StudentPDF(ctx context.Context, studentRef, certificateID string) (*ExportFile, error) {
	cert, err := s.certificates.FindByCertificateID(ctx, strings.ToUpper(strings.TrimSpace(certificateID)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, MsgCertificateMissing)
		}
		return nil, internalError(err, "load certificate")
	}
	if cert.StudentRef != studentRef {
		return nil, appErrors.Clone(appErrors.ErrNotFound, MsgCertificateMissing)
	}
	if cert.Status == models.CertificateStatusRevoked {
		return nil, appErrors.Clone(appErrors.ErrForbidden, MsgCertificateRevokedPDF)
	}
	if s.pdfs == nil {
		return nil, internalError(errors.New("certificate renderer not configured"), "render certificate")
	}
	data, err := s.pdfs.PDF(cert)
	if err != nil {
		return nil, internalError(err, "render certificate")
	}
	return &ExportFile{
		Filename:    cert.CertificateID + ".pdf",
		ContentType: "application/pdf",
		Data:        data,
	}, nil
}
