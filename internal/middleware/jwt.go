package middleware

import (
	"log"
	"net/http"
	"strings"

	"furniro_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

// AuthRequired vérifie le bearer token et place user_id, email et role dans le contexte gin.
// Le paramètre ?token= est accepté pour les websockets, dont le navigateur ne peut pas
// fixer les en-têtes.
func AuthRequired(issuer *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized, Please Login"})
			return
		}

		claims, err := issuer.ParseJWT(tokenString)
		if err != nil {
			log.Printf("❌ Erreur parsing JWT: %v", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return c.Query("token")
}
