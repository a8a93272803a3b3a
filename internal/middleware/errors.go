package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/miit-portal/pkg/errors"
	"github.com/noah-isme/miit-portal/pkg/middleware/requestid"
	"github.com/noah-isme/miit-portal/pkg/response"
)

// ErrorLogger logs server faults recorded by response.Error together with
// their wrapped cause. Client errors are not logged.
func ErrorLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		for _, ginErr := range c.Errors {
			var appErr *appErrors.Error
			if !errors.As(ginErr.Err, &appErr) || appErr.Status < http.StatusInternalServerError {
				continue
			}
			fields := []zap.Field{
				zap.String("code", appErr.Code),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
			}
			if reqID := requestid.Value(c); reqID != "" {
				fields = append(fields, zap.String("request_id", reqID))
			}
			if appErr.Err != nil {
				fields = append(fields, zap.Error(appErr.Err))
			}
			log.Error(appErr.Message, fields...)
		}
	}
}

// Recovery renders panics as the generic internal error envelope.
func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Error("panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path), zap.Stack("stack"))
		response.Abort(c, appErrors.ErrInternal)
	})
}
