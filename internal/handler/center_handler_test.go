package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/miit-portal/internal/models"
	"github.com/noah-isme/miit-portal/internal/service"
	appErrors "github.com/noah-isme/miit-portal/pkg/errors"
)

type fakeCenterService struct {
	registration service.CenterRegistration
	form         map[string]string
	uploads      map[string]string
	registerErr  error

	dashboardID string
	moderated   []string
	state       string
	page, limit int
	filter      models.CenterFilter
	docPath     string
	openErr     error
}

func (f *fakeCenterService) Register(_ context.Context, req service.CenterRegistration, form map[string]string, files []service.UploadedFile) (*service.RegistrationResult, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	f.registration = req
	f.form = form
	f.uploads = map[string]string{}
	for _, file := range files {
		body, err := io.ReadAll(file.Content)
		if err != nil {
			return nil, err
		}
		f.uploads[file.Field] = file.Filename + ":" + string(body)
	}
	return &service.RegistrationResult{OK: true, Message: "Registration successful", ID: "center-1", Email: req.Email}, nil
}

func (f *fakeCenterService) Dashboard(_ context.Context, id string) (*models.CenterDashboard, error) {
	f.dashboardID = id
	return &models.CenterDashboard{Center: models.Center{ID: id, Inst: "Patna Skill Point"}, TotalStudents: 4}, nil
}

func (f *fakeCenterService) Approve(_ context.Context, id string) (string, error) {
	f.moderated = append(f.moderated, "approve:"+id)
	return "Center approved", nil
}

func (f *fakeCenterService) Reject(_ context.Context, id string) (string, error) {
	f.moderated = append(f.moderated, "reject:"+id)
	return "Center rejected", nil
}

func (f *fakeCenterService) ListByState(_ context.Context, state string) ([]models.PublicCenter, error) {
	f.state = state
	return []models.PublicCenter{{ID: "center-1", Inst: "Patna Skill Point", State: "Bihar"}}, nil
}

func (f *fakeCenterService) PublicList(_ context.Context, state string, page, limit int) (*models.PublicCenterPage, error) {
	f.state, f.page, f.limit = state, page, limit
	return &models.PublicCenterPage{Centers: []models.PublicCenter{}}, nil
}

func (f *fakeCenterService) List(_ context.Context, filter models.CenterFilter) ([]models.Center, *models.Pagination, error) {
	f.filter = filter
	return []models.Center{{ID: "center-1"}}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: 1}, nil
}

func (f *fakeCenterService) Documents(_ context.Context, id string) ([]models.CenterDocument, error) {
	return []models.CenterDocument{{Field: "aadharFront", URL: "https://portal.test/files/tok"}}, nil
}

func (f *fakeCenterService) OpenDocument(_ context.Context, token string) (*service.Document, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	file, err := os.Open(f.docPath)
	if err != nil {
		return nil, err
	}
	return &service.Document{File: file, Filename: filepath.Base(f.docPath)}, nil
}

type fakeCenterStudents struct {
	centerID string
	filter   models.StudentFilter
}

func (f *fakeCenterStudents) ListByCenter(_ context.Context, centerID string, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	f.centerID, f.filter = centerID, filter
	return []models.Student{{StudentID: "MIIT_202500001"}}, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: 1}, nil
}

func newCenterRouter(identity *models.Identity, centers *fakeCenterService, students *fakeCenterStudents, maxBody int64) http.Handler {
	router := newTestRouter(identity)
	RegisterRoutes(router, Handlers{Centers: NewCenterHandler(centers, students, maxBody)})
	return router
}

func TestCenterHandlerRegisterMultipart(t *testing.T) {
	centers := &fakeCenterService{}
	router := newCenterRouter(nil, centers, &fakeCenterStudents{}, 1<<20)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("fullname", "Ravi Kumar"))
	require.NoError(t, writer.WriteField("email", "ravi@example.com"))
	require.NoError(t, writer.WriteField("inst", "Patna Skill Point"))
	require.NoError(t, writer.WriteField("signature", "data:image/png;base64,AAAA"))
	part, err := writer.CreateFormFile("aadharFront", "front.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, _ := http.NewRequest(http.MethodPost, "/register", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := performRequest(router, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "ravi@example.com", centers.registration.Email)
	assert.Equal(t, "Patna Skill Point", centers.registration.Inst)
	assert.Equal(t, "data:image/png;base64,AAAA", centers.form["signature"])
	assert.Equal(t, "front.png:png-bytes", centers.uploads["aadharFront"])
	assert.Equal(t, "center-1", decodeEnvelope(t, rec).object(t)["id"])
}

func TestCenterHandlerRegisterBodyTooLarge(t *testing.T) {
	centers := &fakeCenterService{}
	router := newCenterRouter(nil, centers, &fakeCenterStudents{}, 64)

	rec := performRequest(router, formRequest(http.MethodPost, "/register", url.Values{
		"fullname": {strings.Repeat("x", 256)},
	}))

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, service.MsgFileTooLarge, decodeEnvelope(t, rec).Error["message"])
	assert.Empty(t, centers.registration.FullName)
}

func TestCenterHandlerRegisterDuplicateEmail(t *testing.T) {
	centers := &fakeCenterService{registerErr: appErrors.Clone(appErrors.ErrValidation, service.MsgEmailRegistered)}
	router := newCenterRouter(nil, centers, &fakeCenterStudents{}, 0)

	rec := performRequest(router, formRequest(http.MethodPost, "/register", url.Values{"email": {"ravi@example.com"}}))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, service.MsgEmailRegistered, decodeEnvelope(t, rec).Error["message"])
}

func TestCenterHandlerPublicListings(t *testing.T) {
	centers := &fakeCenterService{}
	router := newCenterRouter(nil, centers, &fakeCenterStudents{}, 0)

	rec := performRequest(router, jsonRequest(http.MethodGet, "/api/centers/by-state?state=Bihar", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec).object(t)
	assert.Equal(t, true, data["ok"])
	assert.Len(t, data["centers"], 1)
	assert.Equal(t, "Bihar", centers.state)

	rec = performRequest(router, jsonRequest(http.MethodGet, "/api/centers?state=Goa&page=2&limit=50", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Goa", centers.state)
	assert.Equal(t, 2, centers.page)
	assert.Equal(t, 50, centers.limit)
}

func TestCenterHandlerPortalUsesSessionCenter(t *testing.T) {
	centers := &fakeCenterService{}
	students := &fakeCenterStudents{}
	router := newCenterRouter(centerIdentity(), centers, students, 0)

	rec := performRequest(router, jsonRequest(http.MethodGet, "/center-dashboard", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "center-1", centers.dashboardID)
	assert.EqualValues(t, 4, decodeEnvelope(t, rec).object(t)["totalStudents"])

	rec = performRequest(router, jsonRequest(http.MethodGet, "/api/center/students?search=+asha+&pageSize=5", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "center-1", students.centerID)
	assert.Equal(t, models.StudentFilter{Search: "asha", Page: 1, PageSize: 5}, students.filter)
	assert.NotNil(t, decodeEnvelope(t, rec).Pagination)
}

func TestCenterHandlerPortalRequiresCenter(t *testing.T) {
	centers := &fakeCenterService{}
	router := newCenterRouter(studentIdentity(), centers, &fakeCenterStudents{}, 0)

	rec := performRequest(router, jsonRequest(http.MethodGet, "/center-dashboard", ""))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Please login as a center", decodeEnvelope(t, rec).Error["message"])
	assert.Empty(t, centers.dashboardID)
}

func TestCenterHandlerModeration(t *testing.T) {
	centers := &fakeCenterService{}
	router := newCenterRouter(superAdminIdentity(), centers, &fakeCenterStudents{}, 0)

	rec := performRequest(router, jsonRequest(http.MethodPost, "/super-admin/center/center-9/approve", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Center approved", decodeEnvelope(t, rec).object(t)["message"])

	rec = performRequest(router, jsonRequest(http.MethodPost, "/super-admin/center/center-9/reject", ""))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []string{"approve:center-9", "reject:center-9"}, centers.moderated)

	rec = performRequest(router, jsonRequest(http.MethodGet, "/super-admin/centers?status=pending&page=2", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.CenterFilter{Status: "pending", Page: 2, PageSize: 20}, centers.filter)

	rec = performRequest(router, jsonRequest(http.MethodGet, "/super-admin/center/center-9/documents", ""))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeEnvelope(t, rec).object(t)["documents"], 1)
}

func TestCenterHandlerFileServesDocumentInline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uploads-1-aadhar_front.png")
	require.NoError(t, os.WriteFile(path, []byte("png-bytes"), 0o600))
	centers := &fakeCenterService{docPath: path}
	router := newCenterRouter(nil, centers, &fakeCenterStudents{}, 0)

	rec := performRequest(router, jsonRequest(http.MethodGet, "/files/tok", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png-bytes", rec.Body.String())
	assert.Equal(t, `inline; filename="uploads-1-aadhar_front.png"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
}

func TestCenterHandlerFileRejectsBadToken(t *testing.T) {
	centers := &fakeCenterService{openErr: appErrors.Clone(appErrors.ErrForbidden, "link expired")}
	router := newCenterRouter(nil, centers, &fakeCenterStudents{}, 0)

	rec := performRequest(router, jsonRequest(http.MethodGet, "/files/tampered", ""))

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
