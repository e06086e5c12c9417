package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"furniro_back_end/internal/cache"

	"github.com/gin-gonic/gin"
)

const (
	// Limites par endpoint
	LoginMaxAttempts    = 5
	RegisterMaxAttempts = 3
	CartMaxAdds         = 20

	// Durées de cooldown
	LoginCooldown    = 15 * time.Minute
	RegisterCooldown = 30 * time.Minute
	CartWindow       = 1 * time.Minute
)

// LoginRateLimit bloque un email après LoginMaxAttempts échecs consécutifs.
func LoginRateLimit(rl *cache.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil {
			c.Next()
			return
		}

		// Lire le body sans le consommer
		bodyBytes, _ := io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		var input struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(bodyBytes, &input); err != nil || input.Email == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := "login_attempts:" + strings.ToLower(input.Email)

		if ttl := rl.Blocked(ctx, key); ttl > 0 {
			tooMany(c, fmt.Sprintf("Too many failed attempts. Try again in %d minutes", minutes(ttl)), ttl)
			return
		}

		attempts, _ := rl.Count(ctx, key)
		if attempts >= LoginMaxAttempts {
			rl.Block(ctx, key, LoginCooldown)
			tooMany(c, fmt.Sprintf("Too many failed attempts. Account locked for %d minutes", minutes(LoginCooldown)), LoginCooldown)
			return
		}

		c.Next()

		switch c.Writer.Status() {
		case http.StatusUnauthorized:
			if _, err := rl.Hit(ctx, key, LoginCooldown); err != nil {
				log.Printf("⚠️ Rate limit login: %v", err)
			}
		case http.StatusOK:
			rl.Reset(ctx, key)
		}
	}
}

// RegisterRateLimit limite les inscriptions réussies par IP.
func RegisterRateLimit(rl *cache.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		key := "register_attempts:" + c.ClientIP()

		if ttl := rl.Blocked(ctx, key); ttl > 0 {
			tooMany(c, fmt.Sprintf("Too many registrations. Try again in %d minutes", minutes(ttl)), ttl)
			return
		}
		attempts, _ := rl.Count(ctx, key)
		if attempts >= RegisterMaxAttempts {
			rl.Block(ctx, key, RegisterCooldown)
			tooMany(c, fmt.Sprintf("Too many registrations. Try again in %d minutes", minutes(RegisterCooldown)), RegisterCooldown)
			return
		}

		c.Next()

		if c.Writer.Status() == http.StatusCreated {
			rl.Hit(ctx, key, RegisterCooldown)
		}
	}
}

// CartRateLimit limite les ajouts au panier par utilisateur.
func CartRateLimit(rl *cache.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if rl == nil || userID == "" {
			c.Next()
			return
		}

		n, err := rl.Hit(c.Request.Context(), "cart_add:"+userID, CartWindow)
		if err != nil {
			log.Printf("⚠️ Rate limit panier: %v", err)
			c.Next()
			return
		}
		if n > CartMaxAdds {
			tooMany(c, "Too many cart additions, slow down", CartWindow)
			return
		}
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", CartMaxAdds))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", CartMaxAdds-n))
		c.Next()
	}
}

func tooMany(c *gin.Context, msg string, retry time.Duration) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
		"error":       msg,
		"retry_after": int(retry.Seconds()),
	})
}

func minutes(d time.Duration) int {
	m := int(d.Minutes())
	if m < 1 {
		return 1
	}
	return m
}
