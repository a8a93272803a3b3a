package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/miit-portal/internal/models"
	appErrors "github.com/noah-isme/miit-portal/pkg/errors"
	"github.com/noah-isme/miit-portal/pkg/response"
)

// RequireStudent admits only requests signed in as a student.
func RequireStudent() gin.HandlerFunc {
	return gate((*models.Identity).IsStudent, "Please login as a student")
}

// RequireCenter admits only requests signed in as a center.
func RequireCenter() gin.HandlerFunc {
	return gate((*models.Identity).IsCenter, "Please login as a center")
}

// RequireSuperAdmin admits only requests signed in as the super-admin.
func RequireSuperAdmin() gin.HandlerFunc {
	return gate((*models.Identity).IsSuperAdmin, "Please login as super admin")
}

func gate(allowed func(*models.Identity) bool, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !allowed(IdentityFromContext(c)) {
			response.Abort(c, appErrors.Clone(appErrors.ErrUnauthorized, message))
			return
		}
		c.Next()
	}
}
