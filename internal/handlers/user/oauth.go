package user

import (
	"html/template"
	"log"
	"net/http"

	"furniro_back_end/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
)

// OAuthHandler gère la connexion Google dans une popup: la page de callback
// transmet le résultat à la fenêtre parente via postMessage.
type OAuthHandler struct {
	auth        *service.AuthService
	frontendURL string
	enabled     bool
	complete    func(http.ResponseWriter, *http.Request) (goth.User, error)
}

func NewOAuthHandler(auth *service.AuthService, frontendURL string, enabled bool) *OAuthHandler {
	return &OAuthHandler{
		auth:        auth,
		frontendURL: frontendURL,
		enabled:     enabled,
		complete:    gothic.CompleteUserAuth,
	}
}

// 🔵 GET /api/auth/google
func (h *OAuthHandler) Begin(c *gin.Context) {
	if !h.enabled {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Google OAuth is not configured"})
		return
	}
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// 🔵 GET /api/auth/google/callback
func (h *OAuthHandler) Callback(c *gin.Context) {
	if !h.enabled {
		h.popup(c, http.StatusServiceUnavailable, gin.H{"type": "GOOGLE_AUTH_ERROR", "error": "Google OAuth is not configured"})
		return
	}

	gu, err := h.complete(c.Writer, c.Request)
	if err != nil {
		log.Printf("❌ Callback Google: %v", err)
		h.popup(c, http.StatusUnauthorized, gin.H{"type": "GOOGLE_AUTH_ERROR", "error": "Google authentication failed"})
		return
	}

	res, err := h.auth.OAuthLogin(c.Request.Context(), service.OAuthProfile{
		GoogleID: gu.UserID,
		Email:    gu.Email,
		Name:     gu.Name,
		Avatar:   gu.AvatarURL,
	})
	if err != nil {
		log.Printf("❌ Connexion Google %s: %v", gu.Email, err)
		h.popup(c, http.StatusUnauthorized, gin.H{"type": "GOOGLE_AUTH_ERROR", "error": "Google authentication failed"})
		return
	}

	h.popup(c, http.StatusOK, gin.H{"type": "GOOGLE_AUTH_SUCCESS", "token": res.Token, "user": res.User})
}

// 🔴 GET /api/auth/google/failure
func (h *OAuthHandler) Failure(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": "Google authentication failed"})
}

func (h *OAuthHandler) popup(c *gin.Context, status int, payload gin.H) {
	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	err := popupTmpl.Execute(c.Writer, struct {
		Payload gin.H
		Origin  string
	}{payload, h.frontendURL})
	if err != nil {
		log.Printf("❌ Rendu de la page OAuth: %v", err)
	}
}

// html/template encode Payload et Origin en JSON dans le contexte <script>.
var popupTmpl = template.Must(template.New("oauth").Parse(`<!DOCTYPE html>
<html>
<head><title>Furniro</title></head>
<body>
<script>
	(function () {
		var payload = {{.Payload}};
		if (window.opener) {
			window.opener.postMessage(payload, {{.Origin}});
			window.close();
		} else {
			document.body.innerText = payload.type === "GOOGLE_AUTH_SUCCESS" ? "Signed in, you can close this window." : payload.error;
		}
	})();
</script>
</body>
</html>`))
