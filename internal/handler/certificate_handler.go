package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/miit-portal/internal/middleware"
	"github.com/noah-isme/miit-portal/internal/models"
	appErrors "github.com/noah-isme/miit-portal/pkg/errors"
	"github.com/noah-isme/miit-portal/pkg/response"
)

type certificateService interface {
	Issue(ctx context.Context, req models.IssueCertificateRequest, issuerEmail string) (*models.IssueCertificateResult, error)
	Revoke(ctx context.Context, id string) (string, error)
	List(ctx context.Context, filter models.CertificateFilter) ([]models.Certificate, *models.Pagination, error)
}

// CertificateHandler exposes super-admin certificate issuance and revocation.
type CertificateHandler struct {
	certificates certificateService
}

// NewCertificateHandler constructs CertificateHandler.
func NewCertificateHandler(certificates certificateService) *CertificateHandler {
	return &CertificateHandler{certificates: certificates}
}

// Issue godoc
// @Summary Issue a certificate
// @Description The student must be active and may hold at most one certificate.
// @Tags Super Admin
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body models.IssueCertificateRequest true "Issuance payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /super-admin/certificates/issue [post]
func (h *CertificateHandler) Issue(c *gin.Context) {
	var req models.IssueCertificateRequest
	if err := bind(c, &req, "invalid certificate payload"); err != nil {
		response.Error(c, err)
		return
	}
	identity := middleware.IdentityFromContext(c)
	if !identity.IsSuperAdmin() {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	result, err := h.certificates.Issue(c.Request.Context(), req, identity.SuperAdmin.Email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Revoke godoc
// @Summary Revoke a certificate
// @Tags Super Admin
// @Produce json
// @Param id path string true "Certificate record ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /super-admin/certificates/{id}/revoke [post]
func (h *CertificateHandler) Revoke(c *gin.Context) {
	message, err := h.certificates.Revoke(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, okMessage{OK: true, Message: message}, nil)
}

// List godoc
// @Summary List certificates
// @Tags Super Admin
// @Produce json
// @Param status query string false "active, revoked or expired"
// @Param search query string false "Certificate ID, student name or studentId"
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Router /super-admin/certificates [get]
func (h *CertificateHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	certs, pagination, err := h.certificates.List(c.Request.Context(), models.CertificateFilter{
		Status:   c.Query("status"),
		Search:   strings.TrimSpace(c.Query("search")),
		Page:     page,
		PageSize: size,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, certs, pagination)
}
