package routes

import (
	"net/http"
	"time"

	"furniro_back_end/internal/audit"
	"furniro_back_end/internal/cache"
	"furniro_back_end/internal/config"
	"furniro_back_end/internal/handlers/admin"
	paymenthandler "furniro_back_end/internal/handlers/payment"
	producthandler "furniro_back_end/internal/handlers/product"
	"furniro_back_end/internal/handlers/user"
	"furniro_back_end/internal/middleware"
	"furniro_back_end/internal/service"
	"furniro_back_end/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps regroupe tout ce dont le routeur a besoin. Notifier, RateLimiter, Metrics et
// AuditReader peuvent être nil.
type Deps struct {
	Config      *config.Config
	Tokens      *utils.TokenIssuer
	Auth        *service.AuthService
	Catalog     *service.CatalogService
	Carts       *service.CartService
	Favorites   *service.FavoritesService
	Orders      *service.OrderService
	Payments    *service.PaymentService
	Notifier    *cache.CartNotifier
	RateLimiter *cache.RateLimiter
	Metrics     *middleware.Metrics
	AuditReader audit.Reader

	GoogleEnabled bool
}

func Setup(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     d.Config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestContext())
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
	})

	authRequired := middleware.AuthRequired(d.Tokens)
	identity := middleware.AuditIdentity()
	adminOnly := middleware.RequireAdmin(d.Auth)

	api := r.Group("/api")

	// 🔐 Auth
	authH := user.NewAuthHandler(d.Auth)
	oauthH := user.NewOAuthHandler(d.Auth, d.Config.FrontendURL, d.GoogleEnabled)
	auth := api.Group("/auth")
	{
		auth.POST("/register", middleware.RegisterRateLimit(d.RateLimiter), authH.Register)
		auth.POST("/login", middleware.LoginRateLimit(d.RateLimiter), authH.Login)
		auth.GET("/profile", authRequired, identity, authH.Profile)
		auth.GET("/google", oauthH.Begin)
		auth.GET("/google/callback", oauthH.Callback)
		auth.GET("/google/failure", oauthH.Failure)
	}

	// 🛋️ Produits
	productH := producthandler.NewHandler(d.Catalog)
	products := api.Group("/products")
	{
		products.GET("", productH.List)
		products.GET("/:id", productH.Get)
	}
	productsAdmin := products.Group("", authRequired, identity, adminOnly)
	{
		productsAdmin.POST("", productH.Create)
		productsAdmin.POST("/add", productH.Create)
		productsAdmin.PUT("/:id", productH.Update)
		productsAdmin.DELETE("/:id", productH.Delete)
		productsAdmin.POST("/:id/images", productH.UploadImage)
	}

	// 🛒 Panier
	cartH := user.NewCartHandler(d.Carts)
	cartWS := user.NewCartSocket(d.Carts, d.Notifier, d.Metrics)
	cart := api.Group("/cart", authRequired, identity)
	{
		cart.GET("", cartH.Get)
		cart.GET("/get", cartH.Get)
		cart.GET("/ws", cartWS.Serve)
		cart.POST("", cartH.Merge)
		cart.POST("/add", middleware.CartRateLimit(d.RateLimiter), cartH.Add)
		cart.POST("/decrease", cartH.Decrease)
		cart.PUT("/:productId", cartH.SetQuantity)
		cart.DELETE("/remove/:productId", cartH.Remove)
		cart.DELETE("/clear", cartH.Clear)
	}

	// ❤️ Favoris
	favH := user.NewFavoritesHandler(d.Favorites)
	favorites := api.Group("/favorites", authRequired, identity)
	{
		favorites.GET("", favH.Get)
		favorites.POST("", favH.Merge)
		favorites.POST("/add", favH.Add)
		favorites.DELETE("/remove/:productId", favH.Remove)
		favorites.DELETE("/clear", favH.Clear)
		favorites.GET("/check/:productId", favH.Check)
	}

	// 📦 Commandes
	orderH := user.NewOrderHandler(d.Orders)
	orders := api.Group("/orders", authRequired, identity)
	{
		orders.POST("", orderH.Create)
		orders.GET("", orderH.List)
		orders.GET("/:orderId", orderH.Get)
		orders.GET("/:orderId/invoice", orderH.Invoice)
		orders.PUT("/:orderId/status", adminOnly, orderH.UpdateStatus)
	}

	// 💳 Paiements
	paymentH := paymenthandler.NewHandler(d.Payments)
	api.GET("/payments/config", paymentH.Config)
	payments := api.Group("/payments", authRequired, identity)
	{
		payments.POST("/create-payment-intent", paymentH.CreateIntent)
		payments.POST("/confirm-payment", paymentH.Confirm)
		payments.GET("/status/:paymentId", paymentH.Status)
	}

	// 🔴 Administration
	auditH := admin.NewAuditHandler(d.AuditReader)
	roleH := admin.NewRoleHandler(d.Auth)
	adminGroup := api.Group("/admin", authRequired, identity, adminOnly)
	{
		adminGroup.GET("/audit", auditH.List)
		adminGroup.PUT("/users/:id/role", roleH.Assign)
	}

	return r
}
