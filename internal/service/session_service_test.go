package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/miit-portal/internal/models"
	"github.com/noah-isme/miit-portal/pkg/config"
)

func newSessionFixture() (*SessionService, *fakeStudentStore, *fakeCenterStore) {
	store := NewSessionStore(config.SessionConfig{Secret: "test-secret-test-secret", MaxAge: time.Hour})
	students := &fakeStudentStore{students: []*models.Student{
		{ID: "s1", StudentID: "MIIT_202500001", Email: "neha@example.com", Profile: models.StudentProfile{Name: "Neha"}},
	}}
	centers := &fakeCenterStore{centers: []*models.Center{
		{ID: "c1", FullName: "Ravi Kumar", Email: "alpha@example.com"},
	}}
	return NewSessionService(store, "miit_session", students, centers, "Admin@miit.in", nil), students, centers
}

// carry copies cookies set on rec onto a fresh request.
func carry(rec *httptest.ResponseRecorder) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req
}

func TestSessionAssignAndLoad(t *testing.T) {
	svc, _, _ := newSessionFixture()
	rec := httptest.NewRecorder()
	require.NoError(t, svc.Assign(rec, httptest.NewRequest(http.MethodPost, "/", nil), models.Principal{Kind: models.PrincipalStudent, ID: "MIIT_202500001"}))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, "miit_session", cookies[0].Name)

	principal, err := svc.Load(carry(rec))
	require.NoError(t, err)
	assert.Equal(t, models.PrincipalStudent, principal.Kind)
	assert.Equal(t, "MIIT_202500001", principal.ID)
}

func TestSessionAssignReplacesPreviousPrincipal(t *testing.T) {
	svc, _, _ := newSessionFixture()
	first := httptest.NewRecorder()
	require.NoError(t, svc.Assign(first, httptest.NewRequest(http.MethodPost, "/", nil), models.Principal{Kind: models.PrincipalStudent, ID: "MIIT_202500001"}))

	second := httptest.NewRecorder()
	require.NoError(t, svc.Assign(second, carry(first), models.Principal{Kind: models.PrincipalCenter, ID: "c1"}))

	principal, err := svc.Load(carry(second))
	require.NoError(t, err)
	assert.Equal(t, models.Principal{Kind: models.PrincipalCenter, ID: "c1"}, principal)
}

func TestSessionLoadWithoutCookieIsAnonymous(t *testing.T) {
	svc, _, _ := newSessionFixture()

	principal, err := svc.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.True(t, principal.IsAnonymous())
}

func TestSessionLoadTamperedCookie(t *testing.T) {
	svc, _, _ := newSessionFixture()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "miit_session", Value: "garbage"})

	principal, err := svc.Load(req)
	assert.Error(t, err)
	assert.True(t, principal.IsAnonymous())
}

func TestSessionClearKindOnlyClearsMatchingPrincipal(t *testing.T) {
	svc, _, _ := newSessionFixture()
	rec := httptest.NewRecorder()
	require.NoError(t, svc.Assign(rec, httptest.NewRequest(http.MethodPost, "/", nil), models.Principal{Kind: models.PrincipalCenter, ID: "c1"}))

	untouched := httptest.NewRecorder()
	require.NoError(t, svc.ClearKind(untouched, carry(rec), models.PrincipalStudent))
	assert.Empty(t, untouched.Result().Cookies())

	cleared := httptest.NewRecorder()
	require.NoError(t, svc.ClearKind(cleared, carry(rec), models.PrincipalCenter))
	cookies := cleared.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestSessionResolve(t *testing.T) {
	svc, _, _ := newSessionFixture()
	ctx := context.Background()

	identity, stale, err := svc.Resolve(ctx, models.Principal{Kind: models.PrincipalStudent, ID: "MIIT_202500001"})
	require.NoError(t, err)
	assert.False(t, stale)
	require.True(t, identity.IsStudent())
	assert.Equal(t, "Neha", identity.Student.Name)

	identity, stale, err = svc.Resolve(ctx, models.Principal{Kind: models.PrincipalCenter, ID: "c1"})
	require.NoError(t, err)
	assert.False(t, stale)
	require.True(t, identity.IsCenter())
	assert.Equal(t, "Ravi Kumar", identity.Center.Name)

	identity, stale, err = svc.Resolve(ctx, models.Principal{Kind: models.PrincipalSuperAdmin, ID: "admin@miit.in"})
	require.NoError(t, err)
	assert.False(t, stale)
	assert.True(t, identity.IsSuperAdmin())
}

func TestSessionResolveStalePrincipal(t *testing.T) {
	svc, _, _ := newSessionFixture()
	ctx := context.Background()

	for _, p := range []models.Principal{
		{Kind: models.PrincipalStudent, ID: "MIIT_209900001"},
		{Kind: models.PrincipalCenter, ID: "gone"},
		{Kind: models.PrincipalSuperAdmin, ID: "someone@else.in"},
		{Kind: models.PrincipalKind("guardian"), ID: "x"},
	} {
		identity, stale, err := svc.Resolve(ctx, p)
		require.NoError(t, err)
		assert.True(t, stale, p.Kind)
		assert.Equal(t, models.PrincipalAnonymous, identity.Kind)
	}
}

func TestSessionResolveStoreError(t *testing.T) {
	svc, students, _ := newSessionFixture()
	students.err = errors.New("db down")

	identity, stale, err := svc.Resolve(context.Background(), models.Principal{Kind: models.PrincipalStudent, ID: "MIIT_202500001"})
	assert.Error(t, err)
	assert.False(t, stale)
	assert.Equal(t, models.PrincipalAnonymous, identity.Kind)
}
