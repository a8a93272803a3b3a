package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/miit-portal/internal/middleware"
	"github.com/noah-isme/miit-portal/internal/models"
	"github.com/noah-isme/miit-portal/internal/service"
	appErrors "github.com/noah-isme/miit-portal/pkg/errors"
	"github.com/noah-isme/miit-portal/pkg/response"
)

type studentService interface {
	Admit(ctx context.Context, req service.AdmissionRequest) (*models.Student, *models.AdmissionResult, error)
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error)
	ListActiveForIssuance(ctx context.Context) ([]models.Student, error)
	Export(ctx context.Context, filter models.StudentFilter, format string) (*service.ExportFile, error)
}

type studentDashboardService interface {
	Student(ctx context.Context, studentID string) (*models.StudentDashboard, error)
}

type studentCertificateService interface {
	ListForStudent(ctx context.Context, studentRef string) ([]models.Certificate, error)
	StudentPDF(ctx context.Context, studentRef, certificateID string) (*service.ExportFile, error)
}

type principalAssigner interface {
	Assign(w http.ResponseWriter, r *http.Request, p models.Principal) error
}

// StudentHandler exposes admission, the student portal and super-admin student tooling.
type StudentHandler struct {
	students     studentService
	dashboards   studentDashboardService
	certificates studentCertificateService
	sessions     principalAssigner
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService, dashboards studentDashboardService, certificates studentCertificateService, sessions principalAssigner) *StudentHandler {
	return &StudentHandler{students: students, dashboards: dashboards, certificates: certificates, sessions: sessions}
}

// Admission godoc
// @Summary Enroll a student
// @Description Offline admissions require an approved center. On success the session signs in as the new student.
// @Tags Students
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body service.AdmissionRequest true "Admission form"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /api/student-admission [post]
func (h *StudentHandler) Admission(c *gin.Context) {
	var req service.AdmissionRequest
	if err := bind(c, &req, "invalid admission payload"); err != nil {
		response.Error(c, err)
		return
	}
	student, result, err := h.students.Admit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.sessions.Assign(c.Writer, c.Request, models.Principal{Kind: models.PrincipalStudent, ID: student.StudentID}); err != nil {
		_ = c.Error(appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "save admission session"))
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Dashboard godoc
// @Summary Signed-in student home
// @Tags Student
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /student-dashboard [get]
func (h *StudentHandler) Dashboard(c *gin.Context) {
	identity := middleware.IdentityFromContext(c)
	if !identity.IsStudent() {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	dash, err := h.dashboards.Student(c.Request.Context(), identity.Student.StudentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dash, nil)
}

// Certificates godoc
// @Summary Certificates of the signed-in student
// @Tags Student
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /api/student/certificates [get]
func (h *StudentHandler) Certificates(c *gin.Context) {
	identity := middleware.IdentityFromContext(c)
	if !identity.IsStudent() {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	certs, err := h.certificates.ListForStudent(c.Request.Context(), identity.Student.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"ok": true, "certificates": certs}, nil)
}

// CertificatePDF godoc
// @Summary Download one of the signed-in student's certificates
// @Tags Student
// @Produce application/pdf
// @Param certificateId path string true "Certificate ID"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /api/student/certificates/{certificateId}/pdf [get]
func (h *StudentHandler) CertificatePDF(c *gin.Context) {
	identity := middleware.IdentityFromContext(c)
	if !identity.IsStudent() {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	file, err := h.certificates.StudentPDF(c.Request.Context(), identity.Student.ID, c.Param("certificateId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// List godoc
// @Summary List students
// @Tags Super Admin
// @Produce json
// @Param status query string false "active, inactive, completed or dropped"
// @Param search query string false "Name, email or studentId"
// @Param page query int false "Page"
// @Success 200 {object} response.Envelope
// @Router /super-admin/students [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, pagination, err := h.students.List(c.Request.Context(), studentFilter(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Export godoc
// @Summary Export students
// @Tags Super Admin
// @Produce text/csv,application/pdf
// @Param status query string false "Status"
// @Param search query string false "Name, email or studentId"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /super-admin/students/export [get]
func (h *StudentHandler) Export(c *gin.Context) {
	file, err := h.students.Export(c.Request.Context(), studentFilter(c), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// IssuanceCandidates godoc
// @Summary Active students a certificate can be issued to
// @Tags Super Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /super-admin/certificates/issue [get]
func (h *StudentHandler) IssuanceCandidates(c *gin.Context) {
	students, err := h.students.ListActiveForIssuance(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"ok": true, "students": students}, nil)
}

func studentFilter(c *gin.Context) models.StudentFilter {
	page, size := pageParams(c)
	return models.StudentFilter{
		Status:   c.Query("status"),
		Search:   strings.TrimSpace(c.Query("search")),
		CenterID: c.Query("centerId"),
		Page:     page,
		PageSize: size,
	}
}
