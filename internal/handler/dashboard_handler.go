package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/miit-portal/internal/middleware"
	"github.com/noah-isme/miit-portal/internal/models"
	"github.com/noah-isme/miit-portal/pkg/response"
)

type superAdminDashboardService interface {
	SuperAdmin(ctx context.Context) (*models.SuperAdminDashboard, bool, error)
	System() models.SystemMetrics
}

// DashboardHandler serves the super-admin overview.
type DashboardHandler struct {
	dashboards superAdminDashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(dashboards superAdminDashboardService) *DashboardHandler {
	return &DashboardHandler{dashboards: dashboards}
}

// SuperAdmin godoc
// @Summary Super-admin dashboard
// @Tags Super Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /super-admin-dashboard [get]
func (h *DashboardHandler) SuperAdmin(c *gin.Context) {
	summary, cacheHit, err := h.dashboards.SuperAdmin(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ResponseMeta(c))
}

// System godoc
// @Summary Process counters
// @Tags Super Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /super-admin/system [get]
func (h *DashboardHandler) System(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.dashboards.System(), nil)
}
