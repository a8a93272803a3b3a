package handler

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/miit-portal/internal/middleware"
	"github.com/noah-isme/miit-portal/internal/models"
	"github.com/noah-isme/miit-portal/internal/service"
	appErrors "github.com/noah-isme/miit-portal/pkg/errors"
	"github.com/noah-isme/miit-portal/pkg/response"
)

type centerService interface {
	Register(ctx context.Context, req service.CenterRegistration, form map[string]string, files []service.UploadedFile) (*service.RegistrationResult, error)
	Dashboard(ctx context.Context, id string) (*models.CenterDashboard, error)
	Approve(ctx context.Context, id string) (string, error)
	Reject(ctx context.Context, id string) (string, error)
	ListByState(ctx context.Context, state string) ([]models.PublicCenter, error)
	PublicList(ctx context.Context, state string, page, limit int) (*models.PublicCenterPage, error)
	List(ctx context.Context, filter models.CenterFilter) ([]models.Center, *models.Pagination, error)
	Documents(ctx context.Context, id string) ([]models.CenterDocument, error)
	OpenDocument(ctx context.Context, token string) (*service.Document, error)
}

type centerStudentLister interface {
	ListByCenter(ctx context.Context, centerID string, filter models.StudentFilter) ([]models.Student, *models.Pagination, error)
}

// CenterHandler exposes center registration, listings, the center portal and moderation.
type CenterHandler struct {
	centers      centerService
	students     centerStudentLister
	maxBodyBytes int64
}

// NewCenterHandler constructs a CenterHandler. maxBodyBytes caps a whole
// registration request; zero disables the cap.
func NewCenterHandler(centers centerService, students centerStudentLister, maxBodyBytes int64) *CenterHandler {
	return &CenterHandler{centers: centers, students: students, maxBodyBytes: maxBodyBytes}
}

// Register godoc
// @Summary Register a training center
// @Description Multipart registration with optional aadharFront, aadharBack, ch_sign, ch_img, marksheet and regCertificate documents
// @Tags Centers
// @Accept multipart/form-data
// @Produce json
// @Param fullname formData string true "Owner name"
// @Param email formData string true "Login email"
// @Param phone formData string true "Phone"
// @Param password formData string true "Password"
// @Param confirmPassword formData string true "Password confirmation"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /register [post]
func (h *CenterHandler) Register(c *gin.Context) {
	if h.maxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	}
	var req service.CenterRegistration
	if err := c.ShouldBind(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.Clone(appErrors.ErrPayloadTooLarge, service.MsgFileTooLarge))
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}

	values := map[string]string{}
	var files []service.UploadedFile
	if c.Request.MultipartForm != nil {
		for key, vals := range c.Request.MultipartForm.Value {
			if len(vals) > 0 {
				values[key] = vals[0]
			}
		}
		opened, err := openUploads(c.Request.MultipartForm.File)
		defer closeUploads(opened)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable upload"))
			return
		}
		files = opened
	} else {
		for key, vals := range c.Request.PostForm {
			if len(vals) > 0 {
				values[key] = vals[0]
			}
		}
	}

	result, err := h.centers.Register(c.Request.Context(), req, values, files)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

func openUploads(headers map[string][]*multipart.FileHeader) ([]service.UploadedFile, error) {
	files := make([]service.UploadedFile, 0, len(headers))
	for field, list := range headers {
		if len(list) == 0 {
			continue
		}
		file, err := list[0].Open()
		if err != nil {
			return files, err
		}
		files = append(files, service.UploadedFile{Field: field, Filename: list[0].Filename, Content: file})
	}
	return files, nil
}

func closeUploads(files []service.UploadedFile) {
	for _, f := range files {
		if closer, ok := f.Content.(io.Closer); ok {
			_ = closer.Close()
		}
	}
}

// ByState godoc
// @Summary Approved centers in a state
// @Description Exact, case-insensitive state match. A blank state returns an empty list.
// @Tags Centers
// @Produce json
// @Param state query string false "State"
// @Success 200 {object} response.Envelope
// @Router /api/centers/by-state [get]
func (h *CenterHandler) ByState(c *gin.Context) {
	centers, err := h.centers.ListByState(c.Request.Context(), c.Query("state"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"ok": true, "centers": centers}, nil)
}

// Public godoc
// @Summary Page through approved centers in a state
// @Tags Centers
// @Produce json
// @Param state query string true "State"
// @Param page query int false "Page"
// @Param limit query int false "Page size (default 100, max 500)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /api/centers [get]
func (h *CenterHandler) Public(c *gin.Context) {
	page, err := h.centers.PublicList(c.Request.Context(), c.Query("state"), parseQueryInt(c, "page", 1), parseQueryInt(c, "limit", 0))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, page, nil)
}

// Dashboard godoc
// @Summary Signed-in center home
// @Tags Center
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /center-dashboard [get]
func (h *CenterHandler) Dashboard(c *gin.Context) {
	identity := middleware.IdentityFromContext(c)
	if !identity.IsCenter() {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	dash, err := h.centers.Dashboard(c.Request.Context(), identity.Center.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dash, nil)
}

// Students godoc
// @Summary Students enrolled under the signed-in center
// @Tags Center
// @Produce json
// @Param status query string false "Status"
// @Param search query string false "Name, email or studentId"
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /api/center/students [get]
func (h *CenterHandler) Students(c *gin.Context) {
	identity := middleware.IdentityFromContext(c)
	if !identity.IsCenter() {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	page, size := pageParams(c)
	filter := models.StudentFilter{Status: c.Query("status"), Search: strings.TrimSpace(c.Query("search")), Page: page, PageSize: size}
	students, pagination, err := h.students.ListByCenter(c.Request.Context(), identity.Center.ID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// List godoc
// @Summary List centers for moderation
// @Tags Super Admin
// @Produce json
// @Param status query string false "pending, approved or rejected"
// @Param search query string false "Institute, owner, email or phone"
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Router /super-admin/centers [get]
func (h *CenterHandler) List(c *gin.Context) {
	page, size := pageParams(c)
	filter := models.CenterFilter{Status: c.Query("status"), Search: strings.TrimSpace(c.Query("search")), Page: page, PageSize: size}
	centers, pagination, err := h.centers.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, centers, pagination)
}

// Approve godoc
// @Summary Approve a center
// @Tags Super Admin
// @Produce json
// @Param id path string true "Center record id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /super-admin/center/{id}/approve [post]
func (h *CenterHandler) Approve(c *gin.Context) {
	h.moderate(c, h.centers.Approve)
}

// Reject godoc
// @Summary Reject a center
// @Tags Super Admin
// @Produce json
// @Param id path string true "Center record id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /super-admin/center/{id}/reject [post]
func (h *CenterHandler) Reject(c *gin.Context) {
	h.moderate(c, h.centers.Reject)
}

func (h *CenterHandler) moderate(c *gin.Context, apply func(context.Context, string) (string, error)) {
	msg, err := apply(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, okMessage{OK: true, Message: msg}, nil)
}

// Documents godoc
// @Summary Signed download links for a center's documents
// @Tags Super Admin
// @Produce json
// @Param id path string true "Center record id"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /super-admin/center/{id}/documents [get]
func (h *CenterHandler) Documents(c *gin.Context) {
	docs, err := h.centers.Documents(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"ok": true, "documents": docs}, nil)
}

// File godoc
// @Summary Download a center document
// @Tags Super Admin
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /files/{token} [get]
func (h *CenterHandler) File(c *gin.Context) {
	doc, err := h.centers.OpenDocument(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer doc.File.Close() //nolint:errcheck

	info, err := doc.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, appErrors.ErrInternal.Message))
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Content-Disposition", `inline; filename="`+doc.Filename+`"`)
	http.ServeContent(c.Writer, c.Request, doc.Filename, info.ModTime(), doc.File)
}
