package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/miit-portal/internal/models"
	appErrors "github.com/noah-isme/miit-portal/pkg/errors"
)

func newAuthFixture() (*AuthService, *fakeStudentStore, *fakeCenterStore) {
	students := &fakeStudentStore{students: []*models.Student{
		{ID: "s1", StudentID: "MIIT_202500001", Email: "neha@example.com", PasswordHash: "hashed:Secret123"},
	}}
	centers := &fakeCenterStore{centers: []*models.Center{
		{ID: "c1", Email: "approved@example.com", PasswordHash: "hashed:Center123", Status: models.CenterStatusApproved},
		{ID: "c2", Email: "pending@example.com", PasswordHash: "hashed:Center123", Status: models.CenterStatusPending},
	}}
	svc := NewAuthService(students, centers, fakeHasher{}, SuperAdminCredential{Email: " Admin@MIIT.in ", PasswordHash: "hashed:Root1234"}, nil, nil)
	return svc, students, centers
}

func TestStudentLogin(t *testing.T) {
	svc, _, _ := newAuthFixture()

	student, err := svc.StudentLogin(context.Background(), LoginRequest{Email: " NEHA@example.com", Password: "Secret123"})
	require.NoError(t, err)
	assert.Equal(t, "MIIT_202500001", student.StudentID)

	_, err = svc.StudentLogin(context.Background(), LoginRequest{Email: "neha@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
	assert.Equal(t, MsgInvalidCredentials, appErrors.FromError(err).Message)

	_, err = svc.StudentLogin(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "Secret123"})
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, appErrors.FromError(err).Status)
}

func TestLoginRequiresBothFields(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.CenterLogin(context.Background(), LoginRequest{Email: "approved@example.com"})
	require.Error(t, err)
	assert.Equal(t, MsgCredentialsRequired, appErrors.FromError(err).Message)
	assert.Equal(t, http.StatusBadRequest, appErrors.FromError(err).Status)
}

func TestCenterLoginRequiresApproval(t *testing.T) {
	svc, _, _ := newAuthFixture()

	center, err := svc.CenterLogin(context.Background(), LoginRequest{Email: "approved@example.com", Password: "Center123"})
	require.NoError(t, err)
	assert.Equal(t, "c1", center.ID)

	_, err = svc.CenterLogin(context.Background(), LoginRequest{Email: "pending@example.com", Password: "Center123"})
	require.Error(t, err)
	assert.Equal(t, MsgCenterNotApproved, appErrors.FromError(err).Message)

	_, err = svc.CenterLogin(context.Background(), LoginRequest{Email: "missing@example.com", Password: "Center123"})
	require.Error(t, err)
	assert.Equal(t, MsgCenterNotApproved, appErrors.FromError(err).Message)
}

func TestCenterLoginStoreFailure(t *testing.T) {
	svc, _, centers := newAuthFixture()
	centers.err = errors.New("timeout")

	_, err := svc.CenterLogin(context.Background(), LoginRequest{Email: "approved@example.com", Password: "Center123"})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, appErrors.FromError(err).Status)
}

func TestSuperAdminLogin(t *testing.T) {
	svc, _, _ := newAuthFixture()
	assert.Equal(t, "admin@miit.in", svc.SuperAdminEmail())

	email, err := svc.SuperAdminLogin(context.Background(), LoginRequest{Email: "ADMIN@miit.in", Password: "Root1234"})
	require.NoError(t, err)
	assert.Equal(t, "admin@miit.in", email)

	_, err = svc.SuperAdminLogin(context.Background(), LoginRequest{Email: "admin@miit.in", Password: "nope"})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))

	_, err = svc.SuperAdminLogin(context.Background(), LoginRequest{Email: "other@miit.in", Password: "Root1234"})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestSuperAdminLoginWithoutConfiguration(t *testing.T) {
	svc := NewAuthService(&fakeStudentStore{}, &fakeCenterStore{}, fakeHasher{}, SuperAdminCredential{}, nil, nil)

	_, err := svc.SuperAdminLogin(context.Background(), LoginRequest{Email: "admin@miit.in", Password: "Root1234"})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}

func TestLoginWithUnreadableHash(t *testing.T) {
	svc, students, _ := newAuthFixture()
	students.students[0].PasswordHash = "plaintext"

	_, err := svc.StudentLogin(context.Background(), LoginRequest{Email: "neha@example.com", Password: "plaintext"})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidCredentials))
}
