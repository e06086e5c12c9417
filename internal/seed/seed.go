// Package seed charge le catalogue d'exemple et, au besoin, un compte administrateur.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"furniro_back_end/internal/apperr"
	"furniro_back_end/internal/models"
	"furniro_back_end/internal/service"
)

//go:embed products.json
var productsJSON []byte

// Products renvoie le catalogue d'exemple embarqué.
func Products() ([]models.Product, error) {
	var products []models.Product
	if err := json.Unmarshal(productsJSON, &products); err != nil {
		return nil, fmt.Errorf("lecture products.json: %w", err)
	}
	return products, nil
}

// Catalog insère le catalogue d'exemple via le service, qui met à jour le cache
// et l'index de recherche. Avec reset, les produits existants sont supprimés avant.
func Catalog(ctx context.Context, catalog *service.CatalogService, reset bool) ([]models.Product, error) {
	products, err := Products()
	if err != nil {
		return nil, err
	}

	if reset {
		existing, err := catalog.List(ctx, models.ProductFilter{})
		if err != nil {
			return nil, err
		}
		for _, p := range existing {
			if err := catalog.Delete(ctx, p.ID.Hex()); err != nil {
				return nil, err
			}
		}
		log.Printf("🗑️ %d produits existants supprimés", len(existing))
	}

	created := make([]models.Product, 0, len(products))
	for _, p := range products {
		out, err := catalog.Create(ctx, toInput(p))
		if err != nil {
			return created, fmt.Errorf("produit %q: %w", p.Name, err)
		}
		log.Printf("📦 Produit: %s - ID: %s", out.Name, out.ID.Hex())
		created = append(created, *out)
	}
	log.Printf("✅ %d produits insérés", len(created))
	return created, nil
}

func toInput(p models.Product) models.ProductInput {
	return models.ProductInput{
		Name:        &p.Name,
		Description: &p.Description,
		Price:       &p.Price,
		Category:    &p.Category,
		Stock:       &p.Stock,
		Images:      &p.Images,
		Brand:       &p.Brand,
		Tags:        &p.Tags,
		Ratings:     &p.Ratings,
		NumReviews:  &p.NumReviews,
		Sizes:       &p.Sizes,
	}
}

// EnsureAdmin crée le compte s'il n'existe pas puis lui donne le rôle admin.
func EnsureAdmin(ctx context.Context, auth *service.AuthService, name, email, password string) (*models.User, error) {
	userID := ""
	res, err := auth.Register(ctx, service.RegisterInput{Name: name, Email: email, Password: password})
	switch {
	case err == nil:
		userID = res.User.ID.Hex()
	case isDuplicateEmail(err):
		login, lerr := auth.Login(ctx, service.LoginInput{Email: email, Password: password})
		if lerr != nil {
			return nil, fmt.Errorf("compte %s existant: %w", email, lerr)
		}
		userID = login.User.ID.Hex()
	default:
		return nil, err
	}
	return auth.SetRole(ctx, userID, models.RoleAdmin)
}

func isDuplicateEmail(err error) bool {
	var appErr *apperr.Error
	return errors.As(err, &appErr) && appErr.Message == "Email is already registered"
}
