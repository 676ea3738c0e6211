package server

import (
	"github.com/colorworks/lackwerk/internal/auditcontext"
	"github.com/gin-gonic/gin"
)

// AuditContext stamps the request context with the caller details the
// audit trail records alongside every mutation.
func AuditContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		ctx = auditcontext.WithIPAddress(ctx, c.ClientIP())
		ctx = auditcontext.WithUserAgent(ctx, c.Request.UserAgent())
		if requestID := c.GetHeader("X-Request-ID"); requestID != "" {
			ctx = auditcontext.WithRequestID(ctx, requestID)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
