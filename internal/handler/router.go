package handler

import (
	"github.com/gin-gonic/gin"

	internalmiddleware "github.com/noah-isme/miit-portal/internal/middleware"
)

// Handlers groups every HTTP handler mounted by RegisterRoutes. Nil handlers
// leave their routes unregistered.
type Handlers struct {
	Health       *HealthHandler
	Verification *VerificationHandler
	Auth         *AuthHandler
	Catalog      *CatalogHandler
	Centers      *CenterHandler
	Students     *StudentHandler
	Certificates *CertificateHandler
	Leads        *LeadHandler
	Dashboard    *DashboardHandler
}

// RegisterRoutes mounts the portal surface on r. Session resolution must
// already be installed so the access gates see the request identity.
func RegisterRoutes(r gin.IRouter, h Handlers) {
	if h.Health != nil {
		r.GET("/health", h.Health.Health)
		r.GET("/ready", h.Health.Ready)
		r.GET("/metrics", h.Health.Prometheus)
	}

	if h.Verification != nil {
		r.POST("/center-verification", h.Verification.Center)
		r.POST("/student-verification", h.Verification.Student)
		r.POST("/verify-certificate", h.Verification.Certificate)
		r.GET("/verify-certificate/:token", h.Verification.SharedCertificate)
	}

	if h.Auth != nil {
		r.POST("/student-login", h.Auth.StudentLogin)
		r.POST("/center-login", h.Auth.CenterLogin)
		r.POST("/super-admin-login", h.Auth.SuperAdminLogin)
		for _, method := range []string{"GET", "POST"} {
			r.Handle(method, "/student-logout", h.Auth.StudentLogout)
			r.Handle(method, "/center-logout", h.Auth.CenterLogout)
			r.Handle(method, "/super-admin-logout", h.Auth.SuperAdminLogout)
		}
	}

	if h.Catalog != nil {
		r.GET("/api/courses", h.Catalog.Courses)
		r.GET("/api/courses/:id", h.Catalog.Course)
		r.GET("/api/gallery", h.Catalog.Gallery)
	}

	if h.Leads != nil {
		r.POST("/api/contact", h.Leads.Contact)
		r.POST("/api/callback-request", h.Leads.Callback)
	}

	if h.Centers != nil {
		r.POST("/register", h.Centers.Register)
		r.GET("/api/centers/by-state", h.Centers.ByState)
		r.GET("/api/centers", h.Centers.Public)
		r.GET("/files/:token", h.Centers.File)

		center := r.Group("", internalmiddleware.RequireCenter())
		center.GET("/center-dashboard", h.Centers.Dashboard)
		center.GET("/api/center/students", h.Centers.Students)
	}

	if h.Students != nil {
		r.POST("/api/student-admission", h.Students.Admission)

		student := r.Group("", internalmiddleware.RequireStudent())
		student.GET("/student-dashboard", h.Students.Dashboard)
		student.GET("/api/student/certificates", h.Students.Certificates)
		student.GET("/api/student/certificates/:certificateId/pdf", h.Students.CertificatePDF)
	}

	admin := r.Group("", internalmiddleware.RequireSuperAdmin())
	if h.Dashboard != nil {
		admin.GET("/super-admin-dashboard", h.Dashboard.SuperAdmin)
		admin.GET("/super-admin/system", h.Dashboard.System)
	}
	if h.Centers != nil {
		admin.GET("/super-admin/centers", h.Centers.List)
		admin.POST("/super-admin/center/:id/approve", h.Centers.Approve)
		admin.POST("/super-admin/center/:id/reject", h.Centers.Reject)
		admin.GET("/super-admin/center/:id/documents", h.Centers.Documents)
	}
	if h.Students != nil {
		admin.GET("/super-admin/students", h.Students.List)
		admin.GET("/super-admin/students/export", h.Students.Export)
		admin.GET("/super-admin/certificates/issue", h.Students.IssuanceCandidates)
	}
	if h.Certificates != nil {
		admin.GET("/super-admin/certificates", h.Certificates.List)
		admin.POST("/super-admin/certificates/issue", h.Certificates.Issue)
		admin.POST("/super-admin/certificates/:id/revoke", h.Certificates.Revoke)
	}
	if h.Leads != nil {
		admin.GET("/super-admin/contact-queries", h.Leads.Queries)
		admin.POST("/super-admin/contact-query/:id/update", h.Leads.UpdateQuery)
		admin.DELETE("/super-admin/contact-query/:id/delete", h.Leads.DeleteQuery)
		admin.GET("/super-admin/callbacks", h.Leads.Callbacks)
		admin.POST("/super-admin/callback/:id/status", h.Leads.UpdateCallback)
	}
}
