package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/miit-portal/internal/models"
	"github.com/noah-isme/miit-portal/pkg/response"
)

type verificationService interface {
	VerifyCenter(ctx context.Context, raw string) (*models.VerificationResult, error)
	VerifyStudent(ctx context.Context, raw string) (*models.VerificationResult, error)
	VerifyCertificate(ctx context.Context, raw string) (*models.VerificationResult, error)
}

type shareTokenParser interface {
	Parse(token string) (string, error)
}

// VerificationHandler exposes the public verification lookups.
type VerificationHandler struct {
	service verificationService
	shares  shareTokenParser
}

// NewVerificationHandler constructs a VerificationHandler.
func NewVerificationHandler(service verificationService, shares shareTokenParser) *VerificationHandler {
	return &VerificationHandler{service: service, shares: shares}
}

type centerVerificationRequest struct {
	CenterID string `json:"center_id" form:"center_id"`
}

type studentVerificationRequest struct {
	StudentID string `json:"student_id" form:"student_id"`
}

type certificateVerificationRequest struct {
	CertNo string `json:"cert_no" form:"cert_no"`
}

// Center godoc
// @Summary Verify a center
// @Description Look a center up by record id, institute, email, phone or owner name
// @Tags Verification
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body centerVerificationRequest true "Center query"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /center-verification [post]
func (h *VerificationHandler) Center(c *gin.Context) {
	var req centerVerificationRequest
	if err := bind(c, &req, "invalid verification payload"); err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, h.service.VerifyCenter, req.CenterID)
}

// Student godoc
// @Summary Verify a student
// @Description Look a student up by studentId, login email or name
// @Tags Verification
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body studentVerificationRequest true "Student query"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /student-verification [post]
func (h *VerificationHandler) Student(c *gin.Context) {
	var req studentVerificationRequest
	if err := bind(c, &req, "invalid verification payload"); err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, h.service.VerifyStudent, req.StudentID)
}

// Certificate godoc
// @Summary Verify a certificate
// @Description Look an active certificate up by id, verification code or studentId
// @Tags Verification
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body certificateVerificationRequest true "Certificate number"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /verify-certificate [post]
func (h *VerificationHandler) Certificate(c *gin.Context) {
	var req certificateVerificationRequest
	if err := bind(c, &req, "invalid verification payload"); err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, h.service.VerifyCertificate, req.CertNo)
}

// SharedCertificate godoc
// @Summary Verify a certificate from its printed link
// @Tags Verification
// @Produce json
// @Param token path string true "Share token"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /verify-certificate/{token} [get]
func (h *VerificationHandler) SharedCertificate(c *gin.Context) {
	certificateID, err := h.shares.Parse(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, h.service.VerifyCertificate, certificateID)
}

func (h *VerificationHandler) respond(c *gin.Context, lookup func(context.Context, string) (*models.VerificationResult, error), query string) {
	result, err := lookup(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
