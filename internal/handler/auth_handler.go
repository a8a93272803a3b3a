package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/miit-portal/internal/models"
	"github.com/noah-isme/miit-portal/internal/service"
	appErrors "github.com/noah-isme/miit-portal/pkg/errors"
	"github.com/noah-isme/miit-portal/pkg/response"
)

const msgLoginFailed = "Login failed. Try again."

type authService interface {
	StudentLogin(ctx context.Context, req service.LoginRequest) (*models.Student, error)
	CenterLogin(ctx context.Context, req service.LoginRequest) (*models.Center, error)
	SuperAdminLogin(ctx context.Context, req service.LoginRequest) (string, error)
}

type sessionManager interface {
	Assign(w http.ResponseWriter, r *http.Request, p models.Principal) error
	ClearKind(w http.ResponseWriter, r *http.Request, kind models.PrincipalKind) error
}

// loginResult is returned after a successful sign-in.
type loginResult struct {
	OK       bool   `json:"ok"`
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
	ID       string `json:"id"`
	Name     string `json:"name"`
}

// AuthHandler wires the three sign-in flows to the session principal slot.
type AuthHandler struct {
	auth     authService
	sessions sessionManager
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(auth authService, sessions sessionManager) *AuthHandler {
	return &AuthHandler{auth: auth, sessions: sessions}
}

// StudentLogin godoc
// @Summary Student sign-in
// @Tags Authentication
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body service.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /student-login [post]
func (h *AuthHandler) StudentLogin(c *gin.Context) {
	var req service.LoginRequest
	if err := bind(c, &req, "invalid login payload"); err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.auth.StudentLogin(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.signIn(c, models.Principal{Kind: models.PrincipalStudent, ID: student.StudentID}, loginResult{
		Redirect: "/student-dashboard",
		ID:       student.StudentID,
		Name:     student.Profile.Name,
	})
}

// CenterLogin godoc
// @Summary Center sign-in
// @Description Only approved centers may sign in
// @Tags Authentication
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body service.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /center-login [post]
func (h *AuthHandler) CenterLogin(c *gin.Context) {
	var req service.LoginRequest
	if err := bind(c, &req, "invalid login payload"); err != nil {
		response.Error(c, err)
		return
	}
	center, err := h.auth.CenterLogin(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.signIn(c, models.Principal{Kind: models.PrincipalCenter, ID: center.ID}, loginResult{
		Redirect: "/center-dashboard",
		ID:       center.ID,
		Name:     center.Inst,
	})
}

// SuperAdminLogin godoc
// @Summary Super-admin sign-in
// @Tags Authentication
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body service.LoginRequest true "Credentials"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /super-admin-login [post]
func (h *AuthHandler) SuperAdminLogin(c *gin.Context) {
	var req service.LoginRequest
	if err := bind(c, &req, "invalid login payload"); err != nil {
		response.Error(c, err)
		return
	}
	email, err := h.auth.SuperAdminLogin(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.signIn(c, models.Principal{Kind: models.PrincipalSuperAdmin, ID: email}, loginResult{
		Redirect: "/super-admin-dashboard",
		ID:       email,
		Name:     "Super Admin",
	})
}

func (h *AuthHandler) signIn(c *gin.Context, principal models.Principal, result loginResult) {
	if err := h.sessions.Assign(c.Writer, c.Request, principal); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, msgLoginFailed))
		return
	}
	result.OK = true
	result.Message = "Login successful"
	response.JSON(c, http.StatusOK, result, nil)
}

// StudentLogout godoc
// @Summary Student sign-out
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /student-logout [post]
func (h *AuthHandler) StudentLogout(c *gin.Context) {
	h.signOut(c, models.PrincipalStudent, "/student-login")
}

// CenterLogout godoc
// @Summary Center sign-out
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /center-logout [post]
func (h *AuthHandler) CenterLogout(c *gin.Context) {
	h.signOut(c, models.PrincipalCenter, "/center-login")
}

// SuperAdminLogout godoc
// @Summary Super-admin sign-out
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /super-admin-logout [post]
func (h *AuthHandler) SuperAdminLogout(c *gin.Context) {
	h.signOut(c, models.PrincipalSuperAdmin, "/super-admin-login")
}

// signOut clears the slot only when it holds kind, so signing out of one
// portal never drops a different principal.
func (h *AuthHandler) signOut(c *gin.Context, kind models.PrincipalKind, redirect string) {
	if err := h.sessions.ClearKind(c.Writer, c.Request, kind); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "Logout failed"))
		return
	}
	response.JSON(c, http.StatusOK, okMessage{OK: true, Message: "Logged out", Redirect: redirect}, nil)
}
