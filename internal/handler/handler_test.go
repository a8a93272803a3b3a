package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/miit-portal/internal/middleware"
	"github.com/noah-isme/miit-portal/internal/models"
)

type responseEnvelope struct {
	Data       json.RawMessage        `json:"data"`
	Error      map[string]interface{} `json:"error"`
	Pagination map[string]interface{} `json:"pagination"`
	Meta       map[string]interface{} `json:"meta"`
}

func (e responseEnvelope) object(t *testing.T) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(e.Data, &out))
	return out
}

func (e responseEnvelope) list(t *testing.T) []interface{} {
	t.Helper()
	var out []interface{}
	require.NoError(t, json.Unmarshal(e.Data, &out))
	return out
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) responseEnvelope {
	t.Helper()
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
	return envelope
}

func newTestRouter(identity *models.Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.WithResponseMeta())
	if identity != nil {
		router.Use(func(c *gin.Context) {
			c.Set(middleware.ContextIdentityKey, identity)
			c.Next()
		})
	}
	return router
}

func performRequest(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, target, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func studentIdentity() *models.Identity {
	return &models.Identity{Kind: models.PrincipalStudent, Student: &models.StudentIdentity{
		ID:        "64b7f0c2a1b2c3d4e5f60718",
		StudentID: "MIIT_202500001",
		Name:      "Asha Kumari",
		Email:     "asha@example.com",
	}}
}

func centerIdentity() *models.Identity {
	return &models.Identity{Kind: models.PrincipalCenter, Center: &models.CenterIdentity{
		ID:    "center-1",
		Name:  "Patna Skill Point",
		Email: "center@example.com",
	}}
}

func superAdminIdentity() *models.Identity {
	return &models.Identity{Kind: models.PrincipalSuperAdmin, SuperAdmin: &models.SuperAdminIdentity{Email: "admin@miit.in"}}
}

type fakeSessions struct {
	assigned  []models.Principal
	cleared   []models.PrincipalKind
	assignErr error
	clearErr  error
}

func (f *fakeSessions) Assign(_ http.ResponseWriter, _ *http.Request, p models.Principal) error {
	if f.assignErr != nil {
		return f.assignErr
	}
	f.assigned = append(f.assigned, p)
	return nil
}

func (f *fakeSessions) ClearKind(_ http.ResponseWriter, _ *http.Request, kind models.PrincipalKind) error {
	if f.clearErr != nil {
		return f.clearErr
	}
	f.cleared = append(f.cleared, kind)
	return nil
}
