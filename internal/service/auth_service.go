package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/miit-portal/internal/models"
	appErrors "github.com/noah-isme/miit-portal/pkg/errors"
)

// Login failure messages.
const (
	MsgCredentialsRequired = "Email and password are required."
	MsgCenterNotApproved   = "Invalid credentials or center not approved."
	MsgInvalidCredentials  = "Invalid credentials."
)

type authStudentRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Student, error)
}

type authCenterRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.Center, error)
}

type passwordVerifier interface {
	Verify(hash, plain string) (bool, error)
}

// LoginRequest is shared by the three login forms.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// SuperAdminCredential is the configured operator account.
type SuperAdminCredential struct {
	Email        string
	PasswordHash string
}

// AuthService checks credentials for students, centers and the super-admin.
type AuthService struct {
	students    authStudentRepository
	centers     authCenterRepository
	credentials passwordVerifier
	superAdmin  SuperAdminCredential
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(students authStudentRepository, centers authCenterRepository, credentials passwordVerifier, superAdmin SuperAdminCredential, validate *validator.Validate, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	superAdmin.Email = normalizeEmail(superAdmin.Email)
	return &AuthService{students: students, centers: centers, credentials: credentials, superAdmin: superAdmin, validator: validate, logger: logger}
}

// StudentLogin authenticates a student by login email.
func (s *AuthService) StudentLogin(ctx context.Context, req LoginRequest) (*models.Student, error) {
	email, err := s.validateLogin(&req)
	if err != nil {
		return nil, err
	}
	student, err := s.students.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, MsgInvalidCredentials)
		}
		return nil, internalError(err, "find student for login")
	}
	if err := s.checkPassword(student.PasswordHash, req.Password); err != nil {
		return nil, err
	}
	return student, nil
}

// CenterLogin authenticates an approved center.
func (s *AuthService) CenterLogin(ctx context.Context, req LoginRequest) (*models.Center, error) {
	email, err := s.validateLogin(&req)
	if err != nil {
		return nil, err
	}
	center, err := s.centers.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, MsgCenterNotApproved)
		}
		return nil, internalError(err, "find center for login")
	}
	if !center.Approved() {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, MsgCenterNotApproved)
	}
	if err := s.checkPassword(center.PasswordHash, req.Password); err != nil {
		return nil, err
	}
	return center, nil
}

// SuperAdminLogin authenticates the configured operator and returns its email.
func (s *AuthService) SuperAdminLogin(ctx context.Context, req LoginRequest) (string, error) {
	email, err := s.validateLogin(&req)
	if err != nil {
		return "", err
	}
	if s.superAdmin.PasswordHash == "" || s.superAdmin.Email == "" {
		s.logger.Warn("super-admin login attempted without configured credentials")
		return "", appErrors.Clone(appErrors.ErrInvalidCredentials, MsgInvalidCredentials)
	}
	if email != s.superAdmin.Email {
		return "", appErrors.Clone(appErrors.ErrInvalidCredentials, MsgInvalidCredentials)
	}
	if err := s.checkPassword(s.superAdmin.PasswordHash, req.Password); err != nil {
		return "", err
	}
	return s.superAdmin.Email, nil
}

// SuperAdminEmail returns the configured operator email.
func (s *AuthService) SuperAdminEmail() string {
	return s.superAdmin.Email
}

func (s *AuthService) validateLogin(req *LoginRequest) (string, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return "", validationError(MsgCredentialsRequired)
	}
	return normalizeEmail(req.Email), nil
}

func (s *AuthService) checkPassword(hash, plain string) error {
	ok, err := s.credentials.Verify(hash, plain)
	if err != nil {
		s.logger.Error("stored password hash is unreadable", zap.Error(err))
		return appErrors.Clone(appErrors.ErrInvalidCredentials, MsgInvalidCredentials)
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrInvalidCredentials, MsgInvalidCredentials)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
