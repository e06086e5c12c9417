package middleware

import (
	"furniro_back_end/internal/audit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestContext attribue un X-Request-ID et attache l'appelant au contexte de la
// requête pour les entrées d'audit écrites par les services.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		meta := audit.Meta{
			RequestID: requestID,
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
		}
		c.Request = c.Request.WithContext(audit.WithMeta(c.Request.Context(), meta))
		c.Next()
	}
}

// AuditIdentity complète les métadonnées d'audit avec l'utilisateur authentifié.
// Elle se place après AuthRequired.
func AuditIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		meta := audit.MetaFrom(c.Request.Context())
		meta.UserID = c.GetString("user_id")
		meta.Email = c.GetString("email")
		c.Request = c.Request.WithContext(audit.WithMeta(c.Request.Context(), meta))
		c.Next()
	}
}
