package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/miit-portal/internal/models"
	"github.com/noah-isme/miit-portal/internal/service"
	appErrors "github.com/noah-isme/miit-portal/pkg/errors"
)

type fakeCertificateService struct {
	request   models.IssueCertificateRequest
	issuer    string
	issueErr  error
	revokedID string
	filter    models.CertificateFilter
}

func (f *fakeCertificateService) Issue(_ context.Context, req models.IssueCertificateRequest, issuerEmail string) (*models.IssueCertificateResult, error) {
	f.request, f.issuer = req, issuerEmail
	if f.issueErr != nil {
		return nil, f.issueErr
	}
	return &models.IssueCertificateResult{
		OK:               true,
		Message:          "Certificate issued successfully",
		CertificateID:    "CERT2025030001",
		VerificationCode: "CERT2025030001-AB12CD",
	}, nil
}

func (f *fakeCertificateService) Revoke(_ context.Context, id string) (string, error) {
	f.revokedID = id
	if id == "missing" {
		return "", appErrors.Clone(appErrors.ErrNotFound, service.MsgCertificateMissing)
	}
	return service.MsgCertificateRevoked, nil
}

func (f *fakeCertificateService) List(_ context.Context, filter models.CertificateFilter) ([]models.Certificate, *models.Pagination, error) {
	f.filter = filter
	return []models.Certificate{}, models.NewPagination(filter.Page, filter.PageSize, 0), nil
}

func newCertificateRouter(identity *models.Identity, certs *fakeCertificateService) http.Handler {
	router := newTestRouter(identity)
	RegisterRoutes(router, Handlers{Certificates: NewCertificateHandler(certs)})
	return router
}

func TestCertificateHandlerIssue(t *testing.T) {
	certs := &fakeCertificateService{}
	router := newCertificateRouter(superAdminIdentity(), certs)

	rec := performRequest(router, jsonRequest(http.MethodPost, "/super-admin/certificates/issue",
		`{"studentId":"MIIT_202500001","certificateType":"completion","grade":"A+","validUntil":"2030-01-01","notes":"batch 3"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin@miit.in", certs.issuer)
	assert.Equal(t, models.IssueCertificateRequest{
		StudentID:       "MIIT_202500001",
		CertificateType: "completion",
		Grade:           "A+",
		ValidUntil:      "2030-01-01",
		Notes:           "batch 3",
	}, certs.request)

	data := decodeEnvelope(t, rec).object(t)
	assert.Equal(t, "CERT2025030001", data["certificateId"])
	assert.Equal(t, "CERT2025030001-AB12CD", data["verificationCode"])
}

func TestCertificateHandlerIssueDuplicate(t *testing.T) {
	certs := &fakeCertificateService{issueErr: appErrors.Clone(appErrors.ErrDuplicate, "Certificate already issued for this student")}
	router := newCertificateRouter(superAdminIdentity(), certs)

	rec := performRequest(router, jsonRequest(http.MethodPost, "/super-admin/certificates/issue", `{"studentId":"MIIT_202500001"}`))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Certificate already issued for this student", decodeEnvelope(t, rec).Error["message"])
}

func TestCertificateHandlerIssueRequiresSuperAdmin(t *testing.T) {
	certs := &fakeCertificateService{}
	router := newCertificateRouter(centerIdentity(), certs)

	rec := performRequest(router, jsonRequest(http.MethodPost, "/super-admin/certificates/issue", `{"studentId":"MIIT_202500001"}`))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, certs.issuer)
}

func TestCertificateHandlerRevokeAndList(t *testing.T) {
	certs := &fakeCertificateService{}
	router := newCertificateRouter(superAdminIdentity(), certs)

	rec := performRequest(router, jsonRequest(http.MethodPost, "/super-admin/certificates/cert-7/revoke", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cert-7", certs.revokedID)
	assert.Equal(t, service.MsgCertificateRevoked, decodeEnvelope(t, rec).object(t)["message"])

	rec = performRequest(router, jsonRequest(http.MethodPost, "/super-admin/certificates/missing/revoke", ""))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = performRequest(router, jsonRequest(http.MethodGet, "/super-admin/certificates?status=revoked&search=CERT", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.CertificateFilter{Status: "revoked", Search: "CERT", Page: 1, PageSize: 20}, certs.filter)
}
