package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/miit-portal/api/swagger"
	"github.com/noah-isme/miit-portal/internal/handler"
	internalmiddleware "github.com/noah-isme/miit-portal/internal/middleware"
	"github.com/noah-isme/miit-portal/internal/repository"
	"github.com/noah-isme/miit-portal/internal/service"
	"github.com/noah-isme/miit-portal/pkg/cache"
	"github.com/noah-isme/miit-portal/pkg/config"
	"github.com/noah-isme/miit-portal/pkg/database"
	"github.com/noah-isme/miit-portal/pkg/export"
	"github.com/noah-isme/miit-portal/pkg/jobs"
	"github.com/noah-isme/miit-portal/pkg/logger"
	corsmiddleware "github.com/noah-isme/miit-portal/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/miit-portal/pkg/middleware/requestid"
	"github.com/noah-isme/miit-portal/pkg/storage"
)

// @title MIIT Portal API
// @version 1.0.0
// @description Admissions, center onboarding and certificate verification for MIIT Skill Development.
// @BasePath /
// @schemes http https

const (
	shutdownTimeout     = 10 * time.Second
	registrationFiles   = 6
	registrationFormCap = 1 << 20
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db, logr); err != nil {
			logr.Sugar().Fatalw("schema migration failed", "error", err)
		}
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	centerRepo := repository.NewCenterRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	certificateRepo := repository.NewCertificateRepository(db)
	queryRepo := repository.NewContactQueryRepository(db)
	callbackRepo := repository.NewCallbackRepository(db)

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, listing cache disabled", zap.Error(err))
		} else {
			redisRepo := repository.NewCacheRepository(client, logr)
			defer redisRepo.Close() //nolint:errcheck
			cacheRepo = redisRepo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	uploads, err := storage.NewLocalStorage(cfg.Uploads.Dir)
	if err != nil {
		logr.Sugar().Fatalw("uploads storage unavailable", "dir", cfg.Uploads.Dir, "error", err)
	}
	certificateFiles, err := storage.NewLocalStorage(cfg.Certificates.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("certificate storage unavailable", "dir", cfg.Certificates.StorageDir, "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)
	shareTokens := service.NewShareTokenService(cfg.Certificates.ShareSecret, cfg.PublicBaseURL)

	credentials := service.NewCredentialService(cfg.Security.BcryptCost)
	superAdmin := service.SuperAdminCredential{Email: cfg.SuperAdmin.Email, PasswordHash: cfg.SuperAdmin.PasswordHash}
	if superAdmin.PasswordHash == "" && cfg.SuperAdmin.Password != "" {
		superAdmin.PasswordHash, err = credentials.Hash(cfg.SuperAdmin.Password)
		if err != nil {
			logr.Sugar().Fatalw("hash super admin password", "error", err)
		}
	}
	if superAdmin.PasswordHash == "" {
		logr.Warn("super admin password not configured, super admin login disabled")
	}

	ids := service.NewIDGenerator(studentRepo, certificateRepo, cfg.Identifiers.Location())
	catalog := service.NewCatalogService(nil)

	renderer := service.NewCertificateRenderer(certificateRepo, certificateFiles, export.NewCertificatePDFExporter(), shareTokens, metricsSvc, logr)
	pdfQueue := jobs.NewQueue("certificate-pdf", renderer.Handle, jobs.QueueConfig{
		Workers:    cfg.Certificates.Workers,
		MaxRetries: cfg.Certificates.WorkerRetries,
		Logger:     logr,
	})
	renderer.UseQueue(pdfQueue)
	pdfQueue.Start(ctx)
	defer pdfQueue.Stop()

	sessionSvc := service.NewSessionService(service.NewSessionStore(cfg.Session), cfg.Session.CookieName, studentRepo, centerRepo, cfg.SuperAdmin.Email, logr)
	authSvc := service.NewAuthService(studentRepo, centerRepo, credentials, superAdmin, validate, logr)
	verificationSvc := service.NewVerificationService(centerRepo, studentRepo, certificateRepo, metricsSvc, logr, cfg.Identifiers.Location())
	studentSvc := service.NewStudentService(studentRepo, centerRepo, catalog, ids, credentials, metricsSvc, validate, logr)
	centerSvc := service.NewCenterService(centerRepo, studentRepo, uploads, signer, credentials, cacheSvc, validate, logr, service.CenterServiceConfig{
		MaxUploadBytes: cfg.Uploads.MaxFileSizeBytes,
		PublicBaseURL:  cfg.PublicBaseURL,
		CacheTTL:       cfg.Cache.TTL,
	})
	certificateSvc := service.NewCertificateService(certificateRepo, studentRepo, ids, renderer, metricsSvc, logr, cfg.Certificates.Issuer)
	leadSvc := service.NewLeadService(queryRepo, callbackRepo, logr)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Centers:      centerRepo,
		Students:     studentRepo,
		Certificates: certificateRepo,
		Callbacks:    callbackRepo,
		Queries:      queryRepo,
		Cache:        cacheSvc,
		Metrics:      metricsSvc,
		Logger:       logr,
	})
	gallerySvc := service.NewGalleryService(cfg.Gallery.Dir, cfg.Gallery.URLPrefix, logr)

	r := gin.New()
	r.Use(internalmiddleware.Recovery(logr))
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(internalmiddleware.ErrorLogger(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())
	r.Use(internalmiddleware.Session(sessionSvc, logr))

	handler.RegisterRoutes(r, handler.Handlers{
		Health:       handler.NewHealthHandler(db, metricsSvc.Handler()),
		Verification: handler.NewVerificationHandler(verificationSvc, shareTokens),
		Auth:         handler.NewAuthHandler(authSvc, sessionSvc),
		Catalog:      handler.NewCatalogHandler(catalog, gallerySvc),
		Centers:      handler.NewCenterHandler(centerSvc, studentSvc, registrationFiles*cfg.Uploads.MaxFileSizeBytes+registrationFormCap),
		Students:     handler.NewStudentHandler(studentSvc, dashboardSvc, certificateSvc, sessionSvc),
		Certificates: handler.NewCertificateHandler(certificateSvc),
		Leads:        handler.NewLeadHandler(leadSvc),
		Dashboard:    handler.NewDashboardHandler(dashboardSvc),
	})
	r.Static(cfg.Gallery.URLPrefix, cfg.Gallery.Dir)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
