package middleware

import (
	"context"
	"log"
	"net/http"

	"furniro_back_end/internal/models"

	"github.com/gin-gonic/gin"
)

// RoleLookup relit le rôle courant d'un utilisateur, le claim du token pouvant être périmé.
type RoleLookup interface {
	Role(ctx context.Context, userID string) (string, error)
}

// RequireAdmin refuse l'accès si l'utilisateur n'est pas administrateur.
func RequireAdmin(roles RoleLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := roles.Role(c.Request.Context(), c.GetString("user_id"))
		if err != nil {
			log.Printf("⚠️ Lecture du rôle impossible pour %s: %v", c.GetString("user_id"), err)
		}
		if err != nil || role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied. Admins only"})
			return
		}
		c.Set("role", role)
		c.Next()
	}
}
