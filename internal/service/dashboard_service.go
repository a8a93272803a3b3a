package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/miit-portal/internal/models"
	appErrors "github.com/noah-isme/miit-portal/pkg/errors"
)

const superAdminDashboardKey = "dash:superadmin"

type dashboardCenterSource interface {
	CountByStatus(ctx context.Context) (models.StatusCounts, error)
	Recent(ctx context.Context, limit int) ([]models.Center, error)
	CountByState(ctx context.Context, limit int) ([]models.StateCount, error)
}

type dashboardStudentSource interface {
	CountByStatus(ctx context.Context) (models.StatusCounts, error)
	Recent(ctx context.Context, limit int) ([]models.Student, error)
	FindByStudentID(ctx context.Context, studentID string) (*models.Student, error)
}

type dashboardCertificateSource interface {
	Count(ctx context.Context) (int, error)
	ListByStudent(ctx context.Context, studentRef string) ([]models.Certificate, error)
}

type dashboardCallbackSource interface {
	CountByStatus(ctx context.Context) (models.StatusCounts, error)
	Recent(ctx context.Context, limit int) ([]models.CallbackRequest, error)
}

type dashboardQuerySource interface {
	CountByStatus(ctx context.Context) (models.StatusCounts, error)
}

// DashboardServiceConfig tunes dashboard behaviour.
type DashboardServiceConfig struct {
	CacheTTL    time.Duration
	RecentLimit int
	StatesLimit int
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Centers      dashboardCenterSource
	Students     dashboardStudentSource
	Certificates dashboardCertificateSource
	Callbacks    dashboardCallbackSource
	Queries      dashboardQuerySource
	Cache        listingCache
	Metrics      *MetricsService
	Logger       *zap.Logger
	Config       DashboardServiceConfig
}

// DashboardService composes the per-principal dashboard payloads.
type DashboardService struct {
	centers      dashboardCenterSource
	students     dashboardStudentSource
	certificates dashboardCertificateSource
	callbacks    dashboardCallbackSource
	queries      dashboardQuerySource
	cache        listingCache
	metrics      *MetricsService
	logger       *zap.Logger
	cfg          DashboardServiceConfig
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = 5
	}
	if cfg.StatesLimit <= 0 {
		cfg.StatesLimit = 10
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		centers:      params.Centers,
		students:     params.Students,
		certificates: params.Certificates,
		callbacks:    params.Callbacks,
		queries:      params.Queries,
		cache:        params.Cache,
		metrics:      params.Metrics,
		logger:       logger,
		cfg:          cfg,
	}
}

// SuperAdmin returns the operator overview and reports whether it was served from cache.
func (s *DashboardService) SuperAdmin(ctx context.Context) (*models.SuperAdminDashboard, bool, error) {
	if s.cache != nil {
		var cached models.SuperAdminDashboard
		if hit, err := s.cache.Get(ctx, superAdminDashboardKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	summary, err := s.composeSuperAdmin(ctx)
	if err != nil {
		return nil, false, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, superAdminDashboardKey, summary, s.cfg.CacheTTL); err != nil {
			s.logger.Debug("dashboard cache write failed", zap.Error(err))
		}
	}
	return summary, false, nil
}

func (s *DashboardService) composeSuperAdmin(ctx context.Context) (*models.SuperAdminDashboard, error) {
	centerCounts, err := s.centers.CountByStatus(ctx)
	if err != nil {
		return nil, internalError(err, "count centers")
	}
	studentCounts, err := s.students.CountByStatus(ctx)
	if err != nil {
		return nil, internalError(err, "count students")
	}
	certificates, err := s.certificates.Count(ctx)
	if err != nil {
		return nil, internalError(err, "count certificates")
	}
	callbackCounts, err := s.callbacks.CountByStatus(ctx)
	if err != nil {
		return nil, internalError(err, "count callbacks")
	}
	queryCounts, err := s.queries.CountByStatus(ctx)
	if err != nil {
		return nil, internalError(err, "count contact queries")
	}

	recentCenters, err := s.centers.Recent(ctx, s.cfg.RecentLimit)
	if err != nil {
		return nil, internalError(err, "load recent centers")
	}
	recentStudents, err := s.students.Recent(ctx, s.cfg.RecentLimit)
	if err != nil {
		return nil, internalError(err, "load recent students")
	}
	recentCallbacks, err := s.callbacks.Recent(ctx, s.cfg.RecentLimit)
	if err != nil {
		return nil, internalError(err, "load recent callbacks")
	}
	byState, err := s.centers.CountByState(ctx, s.cfg.StatesLimit)
	if err != nil {
		return nil, internalError(err, "count centers by state")
	}

	return &models.SuperAdminDashboard{
		Stats: models.DashboardStats{
			TotalCenters:       centerCounts.Total(),
			PendingCenters:     centerCounts[string(models.CenterStatusPending)],
			ApprovedCenters:    centerCounts[string(models.CenterStatusApproved)],
			RejectedCenters:    centerCounts[string(models.CenterStatusRejected)],
			TotalStudents:      studentCounts.Total(),
			ActiveStudents:     studentCounts[string(models.StudentStatusActive)],
			InactiveStudents:   studentCounts[string(models.StudentStatusInactive)],
			TotalCertificates:  certificates,
			TotalCallbacks:     callbackCounts.Total(),
			PendingCallbacks:   callbackCounts[string(models.CallbackStatusPending)],
			CompletedCallbacks: callbackCounts[string(models.CallbackStatusCompleted)],
			NewContactQueries:  queryCounts[string(models.ContactStatusNew)],
		},
		RecentCenters:   nonNil(recentCenters),
		RecentStudents:  nonNil(recentStudents),
		RecentCallbacks: nonNil(recentCallbacks),
		CentersByState:  nonNil(byState),
	}, nil
}

// Student returns the signed-in student's record and certificates.
func (s *DashboardService) Student(ctx context.Context, studentID string) (*models.StudentDashboard, error) {
	student, err := s.students.FindByStudentID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, MsgIssueStudentNotFound)
		}
		return nil, internalError(err, "load student dashboard")
	}
	certs, err := s.certificates.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, internalError(err, "load student certificates")
	}
	return &models.StudentDashboard{Student: *student, Certificates: nonNil(certs)}, nil
}

// System returns a snapshot of process counters.
func (s *DashboardService) System() models.SystemMetrics {
	return s.metrics.Snapshot()
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
