package handler

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

type fakeDashboardSrv struct {
	summary *models.SuperAdminDashboard
	hit     bool
	err     error
	system  models.SystemMetrics
}

func (f *fakeDashboardSrv) SuperAdmin(context.Context) (*models.SuperAdminDashboard, bool, error) {
	return f.summary, f.hit, f.err
}

func (f *fakeDashboardSrv) System() models.SystemMetrics {
	return f.system
}

func newDashboardRouter(identity *models.Identity, dashboards *fakeDashboardSrv) http.Handler {
	router := newTestRouter(identity)
	RegisterRoutes(router, Handlers{Dashboard: NewDashboardHandler(dashboards)})
	return router
}

func TestDashboardHandlerSuperAdminCacheHit(t *testing.T) {
	dashboards := &fakeDashboardSrv{
		summary: &models.SuperAdminDashboard{Stats: models.DashboardStats{TotalCenters: 3}},
		hit:     true,
	}
	router := newDashboardRouter(superAdminIdentity(), dashboards)

	rec := performRequest(router, jsonRequest(http.MethodGet, "/super-admin-dashboard", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	assert.Contains(t, envelope.Meta, "processing_time_ms")
	stats := envelope.object(t)["stats"].(map[string]interface{})
	assert.EqualValues(t, 3, stats["totalCenters"])
}

func TestDashboardHandlerSuperAdminError(t *testing.T) {
	dashboards := &fakeDashboardSrv{err: appErrors.Wrap(errors.New("db down"), appErrors.ErrInternal.Code, http.StatusInternalServerError, appErrors.ErrInternal.Message)}
	router := newDashboardRouter(superAdminIdentity(), dashboards)

	rec := performRequest(router, jsonRequest(http.MethodGet, "/super-admin-dashboard", ""))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")
}

func TestDashboardHandlerSystem(t *testing.T) {
	dashboards := &fakeDashboardSrv{system: models.SystemMetrics{RequestsTotal: 42, CacheHitRatio: 0.5}}
	router := newDashboardRouter(superAdminIdentity(), dashboards)

	rec := performRequest(router, jsonRequest(http.MethodGet, "/super-admin/system", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec).object(t)
	assert.EqualValues(t, 42, data["requestsTotal"])
	assert.Equal(t, 0.5, data["cacheHitRatio"])
}

func TestDashboardHandlerRequiresSuperAdmin(t *testing.T) {
	router := newDashboardRouter(nil, &fakeDashboardSrv{})

	rec := performRequest(router, jsonRequest(http.MethodGet, "/super-admin-dashboard", ""))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Please login as super admin", decodeEnvelope(t, rec).Error["message"])
}
