package service

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/miit-portal/internal/models"
	"github.com/noah-isme/miit-portal/pkg/database"
	appErrors "github.com/noah-isme/miit-portal/pkg/errors"
)

type fakePDFSource struct {
	scheduled []string
	data      []byte
	err       error
}

func (f *fakePDFSource) Schedule(certificateID string) {
	f.scheduled = append(f.scheduled, certificateID)
}

func (f *fakePDFSource) PDF(*models.Certificate) ([]byte, error) {
	return f.data, f.err
}

func newCertificateFixture() (*CertificateService, *fakeCertificateStore, *fakePDFSource) {
	centerID := "c1"
	students := &fakeStudentStore{students: []*models.Student{{
		ID:        "s1",
		StudentID: "MIIT_202500001",
		Email:     "neha@example.com",
		Profile:   models.StudentProfile{Name: "Neha Singh"},
		Course:    models.CourseSnapshot{ID: "c01", Title: "Cyber security", Type: "Certificate", Duration: "1 month", Subjects: []string{"a"}},
		Center:    models.CenterSnapshot{ID: &centerID, Inst: "Alpha Institute", State: "Bihar", Phone: "9123456780"},
		Status:    models.StudentStatusActive,
	}}}
	certs := &fakeCertificateStore{}
	gen := NewIDGenerator(students, certs, time.UTC)
	gen.now = func() time.Time { return time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC) }
	pdfs := &fakePDFSource{data: []byte("%PDF-1.3")}
	svc := NewCertificateService(certs, students, gen, pdfs, NewMetricsService(), nil, "")
	return svc, certs, pdfs
}

func TestIssueCertificate(t *testing.T) {
	svc, certs, pdfs := newCertificateFixture()

	result, err := svc.Issue(context.Background(), models.IssueCertificateRequest{
		StudentID: "MIIT_202500001", Grade: "a+", ValidUntil: "2030-01-31", Notes: "Top of class",
	}, "admin@miit.in")
	require.NoError(t, err)
	assert.True(t, result.OK)
	assert.Equal(t, MsgCertificateIssued, result.Message)
	assert.Equal(t, "CERT2025030001", result.CertificateID)
	assert.Regexp(t, regexp.MustCompile(`^CERT2025030001-[A-Z0-9]{6}$`), result.VerificationCode)

	require.Len(t, certs.certificates, 1)
	cert := certs.certificates[0]
	assert.Equal(t, "s1", cert.StudentRef)
	assert.Equal(t, models.CertificateTypeCompletion, cert.CertificateType)
	assert.Equal(t, "A+", cert.Grade)
	assert.Equal(t, "MIIT Skill Development Pvt Ltd", cert.IssuedBy)
	assert.Equal(t, "Super Admin", cert.Metadata.IssuerName)
	assert.Equal(t, "admin@miit.in", cert.Metadata.IssuerEmail)
	require.NotNil(t, cert.ValidUntil)
	assert.Equal(t, 2030, cert.ValidUntil.Year())
	assert.Empty(t, cert.Course.Subjects)
	assert.Equal(t, "Alpha Institute", cert.Center.Inst)
	assert.Equal(t, []string{"CERT2025030001"}, pdfs.scheduled)
}

func TestIssueCertificateValidation(t *testing.T) {
	cases := []struct {
		name    string
		req     models.IssueCertificateRequest
		message string
	}{
		{"missing student", models.IssueCertificateRequest{}, MsgIssueStudentRequired},
		{"unknown student", models.IssueCertificateRequest{StudentID: "MIIT_209900001"}, MsgIssueStudentNotFound},
		{"bad type", models.IssueCertificateRequest{StudentID: "MIIT_202500001", CertificateType: "gold"}, MsgInvalidCertificateType},
		{"bad grade", models.IssueCertificateRequest{StudentID: "MIIT_202500001", Grade: "D"}, MsgInvalidGrade},
		{"bad date", models.IssueCertificateRequest{StudentID: "MIIT_202500001", ValidUntil: "31/01/2030"}, MsgInvalidValidUntil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, certs, _ := newCertificateFixture()
			_, err := svc.Issue(context.Background(), tc.req, "")
			require.Error(t, err)
			assert.Equal(t, tc.message, appErrors.FromError(err).Message)
			assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
			assert.Empty(t, certs.certificates)
		})
	}
}

func TestIssueCertificateOncePerStudent(t *testing.T) {
	svc, _, _ := newCertificateFixture()
	req := models.IssueCertificateRequest{StudentID: "MIIT_202500001"}
	_, err := svc.Issue(context.Background(), req, "")
	require.NoError(t, err)

	_, err = svc.Issue(context.Background(), req, "")
	require.Error(t, err)
	assert.Equal(t, MsgCertificateDuplicate, appErrors.FromError(err).Message)
	assert.True(t, appErrors.Is(err, appErrors.ErrDuplicate))
}

func TestIssueCertificateClassifiesConstraints(t *testing.T) {
	cases := []struct {
		constraint string
		status     int
		message    string
	}{
		{database.ConstraintCertificateID, http.StatusConflict, MsgCertificateIDConflict},
		{database.ConstraintCertificateVerification, http.StatusConflict, MsgCertificateIDConflict},
		{database.ConstraintCertificateStudent, http.StatusBadRequest, MsgCertificateDuplicate},
	}
	for _, tc := range cases {
		t.Run(tc.constraint, func(t *testing.T) {
			svc, certs, pdfs := newCertificateFixture()
			certs.createErr = &pq.Error{Code: "23505", Constraint: tc.constraint}

			_, err := svc.Issue(context.Background(), models.IssueCertificateRequest{StudentID: "MIIT_202500001"}, "")
			require.Error(t, err)
			assert.Equal(t, tc.status, appErrors.FromError(err).Status)
			assert.Equal(t, tc.message, appErrors.FromError(err).Message)
			assert.Empty(t, pdfs.scheduled)
		})
	}
}

func TestRevokeCertificate(t *testing.T) {
	svc, certs, _ := newCertificateFixture()
	_, err := svc.Issue(context.Background(), models.IssueCertificateRequest{StudentID: "MIIT_202500001"}, "")
	require.NoError(t, err)

	msg, err := svc.Revoke(context.Background(), certs.certificates[0].ID)
	require.NoError(t, err)
	assert.Equal(t, MsgCertificateRevoked, msg)
	assert.Equal(t, models.CertificateStatusRevoked, certs.certificates[0].Status)

	_, err = svc.Revoke(context.Background(), "missing")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestStudentPDF(t *testing.T) {
	svc, certs, pdfs := newCertificateFixture()
	_, err := svc.Issue(context.Background(), models.IssueCertificateRequest{StudentID: "MIIT_202500001"}, "")
	require.NoError(t, err)

	file, err := svc.StudentPDF(context.Background(), "s1", "cert2025030001")
	require.NoError(t, err)
	assert.Equal(t, "CERT2025030001.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)

	_, err = svc.StudentPDF(context.Background(), "someone-else", "CERT2025030001")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	pdfs.err = errors.New("disk full")
	_, err = svc.StudentPDF(context.Background(), "s1", "CERT2025030001")
	assert.Equal(t, http.StatusInternalServerError, appErrors.FromError(err).Status)

	certs.certificates[0].Status = models.CertificateStatusRevoked
	_, err = svc.StudentPDF(context.Background(), "s1", "CERT2025030001")
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestStudentPDFWithoutRenderer(t *testing.T) {
	svc, _, _ := newCertificateFixture()
	_, err := svc.Issue(context.Background(), models.IssueCertificateRequest{StudentID: "MIIT_202500001"}, "")
	require.NoError(t, err)

	svc.pdfs = nil
	require.NotPanics(t, func() {
		_, err = svc.StudentPDF(context.Background(), "s1", "CERT2025030001")
	})
	assert.Equal(t, http.StatusInternalServerError, appErrors.FromError(err).Status)
}

func TestListForStudentNeverNil(t *testing.T) {
	svc, _, _ := newCertificateFixture()

	certs, err := svc.ListForStudent(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, certs)
	assert.Empty(t, certs)
}
