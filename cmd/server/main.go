package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"furniro_back_end/internal/cache"
	"furniro_back_end/internal/config"
	"furniro_back_end/internal/database"
	"furniro_back_end/internal/gateway"
	"furniro_back_end/internal/invoice"
	"furniro_back_end/internal/mail"
	"furniro_back_end/internal/middleware"
	"furniro_back_end/internal/routes"
	"furniro_back_end/internal/service"
	"furniro_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backends, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Connexion aux bases de données impossible: %v", err)
	}

	googleEnabled := config.InitOAuthProviders(cfg)
	metrics := middleware.NewMetrics("furniro")
	tokens := utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)

	var (
		productCache *cache.ProductCache
		userCache    *cache.UserCache
		notifier     *cache.CartNotifier
		rateLimiter  *cache.RateLimiter
	)
	if backends.Redis != nil {
		productCache = cache.NewProductCache(backends.Redis, cfg.ProductCacheTTL)
		userCache = cache.NewUserCache(backends.Redis)
		notifier = cache.NewCartNotifier(backends.Redis)
		rateLimiter = cache.NewRateLimiter(backends.Redis)
	}

	var searcher service.ProductSearcher
	if backends.Search != nil {
		searcher = backends.Search
	}
	var images service.ImageUploader
	if backends.Images != nil {
		images = backends.Images
	}

	var mailer mail.Mailer = mail.LogMailer{}
	if cfg.SMTPHost != "" {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	} else {
		log.Println("⚠️ SMTP_HOST non configuré, emails écrits dans les logs")
	}

	var payGateway gateway.Gateway
	if cfg.StripeEnabled() {
		payGateway = gateway.NewStripe(cfg.StripeSecretKey, cfg.StripePublishableKey)
	} else {
		payGateway = gateway.NewSimulated(cfg.PaymentSuccessRate, cfg.StripePublishableKey, nil)
		log.Printf("✅ Paiements simulés (taux de succès %.0f%%)", cfg.PaymentSuccessRate*100)
	}

	repos := backends.Repos
	auth := service.NewAuthService(repos.Users, tokens, userCache, backends.Audit)
	orders := service.NewOrderService(service.OrderDeps{
		Orders:   repos.Orders,
		Products: repos.Products,
		Events:   backends.Events,
		Mailer:   mailer,
		Invoices: invoice.NewRenderer(cfg.FrontendURL, cfg.ChromePath, cfg.InvoicePDF),
		Metrics:  metrics,
		Audit:    backends.Audit,
	})

	r := routes.Setup(routes.Deps{
		Config:    cfg,
		Tokens:    tokens,
		Auth:      auth,
		Catalog:   service.NewCatalogService(repos.Products, productCache, searcher, images, backends.Audit),
		Carts:     service.NewCartService(repos.Carts, repos.Products, notifier),
		Favorites: service.NewFavoritesService(repos.Favorites, repos.Products),
		Orders:    orders,
		Payments: service.NewPaymentService(service.PaymentDeps{
			Payments: repos.Payments,
			Orders:   repos.Orders,
			Gateway:  payGateway,
			Events:   backends.Events,
			Metrics:  metrics,
			Audit:    backends.Audit,
		}),
		Notifier:      notifier,
		RateLimiter:   rateLimiter,
		Metrics:       metrics,
		AuditReader:   backends.AuditReader,
		GoogleEnabled: googleEnabled,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: cfg.RequestTimeout,
	}

	go func() {
		log.Println("🚀 Serveur Furniro lancé sur le port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Serveur arrêté: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Arrêt du serveur...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Arrêt HTTP: %v", err)
	}
	orders.Wait()
	mailer.Close()
	backends.Close(shutdownCtx)
}
