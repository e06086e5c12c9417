package config

import (
	"log"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
)

// InitOAuthProviders configure gothic (store de session + provider Google).
// Retourne false si Google n'est pas configuré.
func InitOAuthProviders(cfg *Config) bool {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.MaxAge(86400 * 30)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: true,
		Secure:   cfg.GinMode == "release",
		SameSite: http.SameSiteLaxMode,
	}
	gothic.Store = store

	// Un seul provider: pas besoin de le lire dans l'URL
	gothic.GetProviderName = func(req *http.Request) (string, error) {
		return "google", nil
	}

	if !cfg.GoogleEnabled() {
		log.Println("⚠️ Google OAuth non configuré (GOOGLE_CLIENT_ID / GOOGLE_CLIENT_SECRET)")
		return false
	}

	goth.UseProviders(google.New(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleCallbackURL,
		"email", "profile",
	))
	log.Println("✅ Google OAuth activé")
	return true
}
