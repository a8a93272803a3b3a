package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/noah-isme/miit-portal/internal/models"
	"github.com/noah-isme/miit-portal/pkg/config"
)

const (
	sessionKindKey = "principal_kind"
	sessionIDKey   = "principal_id"
)

type sessionStudentRepository interface {
	FindByStudentID(ctx context.Context, studentID string) (*models.Student, error)
}

type sessionCenterRepository interface {
	FindByID(ctx context.Context, id string) (*models.Center, error)
}

// NewSessionStore builds the signed cookie store backing principal sessions.
func NewSessionStore(cfg config.SessionConfig) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// SessionService stores exactly one principal per session cookie and resolves
// it back into an identity.
type SessionService struct {
	store      sessions.Store
	name       string
	students   sessionStudentRepository
	centers    sessionCenterRepository
	superAdmin string
	logger     *zap.Logger
}

// NewSessionService constructs a SessionService over store using cookie name.
func NewSessionService(store sessions.Store, name string, students sessionStudentRepository, centers sessionCenterRepository, superAdminEmail string, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if name == "" {
		name = "session"
	}
	return &SessionService{store: store, name: name, students: students, centers: centers, superAdmin: normalizeEmail(superAdminEmail), logger: logger}
}

// Load reads the principal stored in the request session. A cookie that fails
// to decode yields the anonymous principal together with the decode error.
func (s *SessionService) Load(r *http.Request) (models.Principal, error) {
	session, err := s.store.Get(r, s.name)
	if err != nil {
		return models.Anonymous(), fmt.Errorf("decode session: %w", err)
	}
	kind, _ := session.Values[sessionKindKey].(string)
	id, _ := session.Values[sessionIDKey].(string)
	principal := models.Principal{Kind: models.PrincipalKind(kind), ID: id}
	if principal.IsAnonymous() {
		return models.Anonymous(), nil
	}
	return principal, nil
}

// Assign replaces whatever principal the session held with p.
func (s *SessionService) Assign(w http.ResponseWriter, r *http.Request, p models.Principal) error {
	session, _ := s.store.Get(r, s.name)
	session.Values[sessionKindKey] = string(p.Kind)
	session.Values[sessionIDKey] = p.ID
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Clear empties the principal slot and expires the cookie.
func (s *SessionService) Clear(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.store.Get(r, s.name)
	delete(session.Values, sessionKindKey)
	delete(session.Values, sessionIDKey)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// ClearKind empties the slot only when it holds a principal of kind.
func (s *SessionService) ClearKind(w http.ResponseWriter, r *http.Request, kind models.PrincipalKind) error {
	current, err := s.Load(r)
	if err != nil || current.Kind == kind {
		return s.Clear(w, r)
	}
	return nil
}

// Resolve turns a stored principal into an identity. stale is true when the
// principal no longer matches a record and should be cleared.
func (s *SessionService) Resolve(ctx context.Context, p models.Principal) (identity *models.Identity, stale bool, err error) {
	if p.IsAnonymous() {
		return models.AnonymousIdentity(), false, nil
	}
	switch p.Kind {
	case models.PrincipalStudent:
		student, err := s.students.FindByStudentID(ctx, p.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return models.AnonymousIdentity(), true, nil
			}
			return models.AnonymousIdentity(), false, fmt.Errorf("resolve student session: %w", err)
		}
		return &models.Identity{Kind: models.PrincipalStudent, Student: &models.StudentIdentity{
			ID:        student.ID,
			StudentID: student.StudentID,
			Name:      student.Profile.Name,
			Email:     student.Email,
		}}, false, nil
	case models.PrincipalCenter:
		center, err := s.centers.FindByID(ctx, p.ID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return models.AnonymousIdentity(), true, nil
			}
			return models.AnonymousIdentity(), false, fmt.Errorf("resolve center session: %w", err)
		}
		name := center.Inst
		if name == "" {
			name = center.FullName
		}
		return &models.Identity{Kind: models.PrincipalCenter, Center: &models.CenterIdentity{
			ID:    center.ID,
			Name:  name,
			Email: center.Email,
		}}, false, nil
	case models.PrincipalSuperAdmin:
		if s.superAdmin == "" || normalizeEmail(p.ID) != s.superAdmin {
			return models.AnonymousIdentity(), true, nil
		}
		return &models.Identity{Kind: models.PrincipalSuperAdmin, SuperAdmin: &models.SuperAdminIdentity{Email: s.superAdmin}}, false, nil
	default:
		return models.AnonymousIdentity(), true, nil
	}
}
