// Package common regroupe les helpers partagés par les handlers HTTP.
package common

import (
	"log"
	"net/http"

	"furniro_back_end/internal/apperr"

	"github.com/gin-gonic/gin"
)

// RespondError écrit {"error": message} avec le code du type d'erreur.
// Une erreur inattendue devient un 500 qui expose son message.
func RespondError(c *gin.Context, err error) {
	appErr := apperr.As(err)
	if appErr.Kind == apperr.KindServer {
		log.Printf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(appErr.Status(), gin.H{"error": appErr.Message})
}

// BindJSON décode le corps; un corps illisible répond 400.
func BindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return false
	}
	return true
}

// UserID retourne l'utilisateur posé par middleware.AuthRequired.
func UserID(c *gin.Context) string {
	return c.GetString("user_id")
}

func Role(c *gin.Context) string {
	return c.GetString("role")
}
