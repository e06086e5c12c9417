package main

import (
	"context"
	"flag"
	"log"
	"time"

	"furniro_back_end/internal/cache"
	"furniro_back_end/internal/config"
	"furniro_back_end/internal/database"
	"furniro_back_end/internal/seed"
	"furniro_back_end/internal/service"
	"furniro_back_end/internal/utils"
)

func main() {
	reset := flag.Bool("reset", true, "supprimer les produits existants avant l'insertion")
	adminEmail := flag.String("admin-email", "", "créer ou promouvoir ce compte administrateur")
	adminPassword := flag.String("admin-password", "", "mot de passe du compte administrateur")
	adminName := flag.String("admin-name", "Furniro Admin", "nom du compte administrateur")
	flag.Parse()

	cfg := config.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	backends, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Connexion aux bases de données impossible: %v", err)
	}
	defer backends.Close(context.Background())

	var productCache *cache.ProductCache
	var userCache *cache.UserCache
	if backends.Redis != nil {
		productCache = cache.NewProductCache(backends.Redis, cfg.ProductCacheTTL)
		userCache = cache.NewUserCache(backends.Redis)
	}
	var searcher service.ProductSearcher
	if backends.Search != nil {
		searcher = backends.Search
	}

	catalog := service.NewCatalogService(backends.Repos.Products, productCache, searcher, nil, backends.Audit)
	if _, err := seed.Catalog(ctx, catalog, *reset); err != nil {
		log.Fatalf("❌ Erreur seed produits: %v", err)
	}

	if *adminEmail != "" {
		auth := service.NewAuthService(backends.Repos.Users, utils.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL), userCache, backends.Audit)
		admin, err := seed.EnsureAdmin(ctx, auth, *adminName, *adminEmail, *adminPassword)
		if err != nil {
			log.Fatalf("❌ Erreur création administrateur: %v", err)
		}
		log.Printf("✅ Administrateur prêt: %s (%s)", admin.Email, admin.ID.Hex())
	}
}
