package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"furniro_back_end/internal/audit"
	"furniro_back_end/internal/cache"
	"furniro_back_end/internal/models"
	"furniro_back_end/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeRoles map[string]string

func (f fakeRoles) Role(_ context.Context, userID string) (string, error) {
	role, ok := f[userID]
	if !ok {
		return "", errors.New("user not found")
	}
	return role, nil
}

func issueToken(t *testing.T, issuer *utils.TokenIssuer, role string) (string, string) {
	t.Helper()
	user := models.User{ID: primitive.NewObjectID(), Email: "ana@example.com", Role: role}
	token, err := issuer.GenerateJWT(user)
	require.NoError(t, err)
	return token, user.ID.Hex()
}

func newAuthRouter(issuer *utils.TokenIssuer) *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthRequired(issuer), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("user_id")})
	})
	return r
}

func TestAuthRequired(t *testing.T) {
	issuer := utils.NewTokenIssuer("test-secret", time.Hour)
	token, userID := issueToken(t, issuer, models.RoleUser)
	r := newAuthRouter(issuer)

	tests := []struct {
		name   string
		header string
		query  string
		status int
		body   string
	}{
		{"missing", "", "", http.StatusUnauthorized, "Unauthorized, Please Login"},
		{"malformed", "Token " + token, "", http.StatusUnauthorized, "Unauthorized, Please Login"},
		{"bad signature", "Bearer " + token + "x", "", http.StatusUnauthorized, "Invalid or expired token"},
		{"header", "Bearer " + token, "", http.StatusOK, userID},
		{"query for websocket", "", token, http.StatusOK, userID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			url := "/me"
			if tt.query != "" {
				url += "?token=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestAuthRequired_Expired(t *testing.T) {
	past := utils.NewTokenIssuer("test-secret", -time.Minute)
	token, _ := issueToken(t, past, models.RoleUser)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	newAuthRouter(utils.NewTokenIssuer("test-secret", time.Hour)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAdmin_UsesCurrentRole(t *testing.T) {
	issuer := utils.NewTokenIssuer("test-secret", time.Hour)
	// Le token dit admin, mais l'utilisateur a été rétrogradé.
	token, userID := issueToken(t, issuer, models.RoleAdmin)
	roles := fakeRoles{userID: models.RoleUser}

	r := gin.New()
	r.PUT("/admin", AuthRequired(issuer), RequireAdmin(roles), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do()
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Access denied. Admins only"}`, w.Body.String())

	roles[userID] = models.RoleAdmin
	assert.Equal(t, http.StatusNoContent, do().Code)
}

func newLimiter(t *testing.T) (*cache.RateLimiter, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return cache.NewRateLimiter(client), mr
}

func TestLoginRateLimit_LocksAfterFailures(t *testing.T) {
	rl, _ := newLimiter(t)
	r := gin.New()
	r.POST("/login", LoginRateLimit(rl), func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		if strings.Contains(string(body), "good") {
			c.JSON(http.StatusOK, gin.H{"message": "ok"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	})

	login := func(password string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@b.c","password":"`+password+`"}`))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < LoginMaxAttempts; i++ {
		assert.Equal(t, http.StatusUnauthorized, login("bad"))
	}
	assert.Equal(t, http.StatusTooManyRequests, login("good"))
}

func TestLoginRateLimit_SuccessResets(t *testing.T) {
	rl, _ := newLimiter(t)
	r := gin.New()
	r.POST("/login", LoginRateLimit(rl), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"email":"a@b.c"}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	n, err := rl.Count(context.Background(), "login_attempts:a@b.c")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCartRateLimit(t *testing.T) {
	rl, mr := newLimiter(t)
	r := gin.New()
	r.POST("/cart/add", func(c *gin.Context) { c.Set("user_id", "u1") }, CartRateLimit(rl), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	add := func() int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/cart/add", nil))
		return w.Code
	}
	for i := 0; i < CartMaxAdds; i++ {
		require.Equal(t, http.StatusOK, add())
	}
	assert.Equal(t, http.StatusTooManyRequests, add())

	mr.FastForward(CartWindow + time.Second)
	assert.Equal(t, http.StatusOK, add())
}

func TestRateLimit_NilLimiterPassesThrough(t *testing.T) {
	r := gin.New()
	r.POST("/register", RegisterRateLimit(nil), func(c *gin.Context) { c.Status(http.StatusCreated) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/register", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRequestContext_SetsAuditMeta(t *testing.T) {
	var meta audit.Meta
	r := gin.New()
	r.GET("/x", RequestContext(), func(c *gin.Context) { c.Set("user_id", "u1") }, AuditIdentity(), func(c *gin.Context) {
		meta = audit.MetaFrom(c.Request.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("User-Agent", "furniro-test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, w.Header().Get("X-Request-ID"), meta.RequestID)
	assert.Equal(t, "furniro-test", meta.UserAgent)
	assert.Equal(t, "u1", meta.UserID)
}

func TestMetrics_CountsByRoutePattern(t *testing.T) {
	m := NewMetrics("furniro")
	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/api/products/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(m.Handler()))

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/products/abc", nil))
	m.OrderCreated()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	assert.Contains(t, body, `furniro_http_requests_total{method="GET",path="/api/products/:id",status="200"} 1`)
	assert.Contains(t, body, "furniro_orders_created_total 1")
}
