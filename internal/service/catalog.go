package service

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"

	"furniro_back_end/internal/apperr"
	"furniro_back_end/internal/audit"
	"furniro_back_end/internal/cache"
	"furniro_back_end/internal/models"
	"furniro_back_end/internal/repository"
	"furniro_back_end/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductSearcher est l'index plein texte du catalogue (Elasticsearch).
type ProductSearcher interface {
	Search(ctx context.Context, filter models.ProductFilter) ([]string, error)
	IndexProduct(ctx context.Context, product models.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// ImageUploader stocke une image produit et renvoie son URL publique.
type ImageUploader interface {
	Upload(ctx context.Context, productID, filename string, r io.Reader, size int64, contentType string) (string, error)
}

type CatalogService struct {
	products repository.ProductRepository
	cache    *cache.ProductCache
	search   ProductSearcher
	images   ImageUploader
	audit    audit.Logger
}

// NewCatalogService accepte des dépendances optionnelles nil: cache, search, images.
func NewCatalogService(products repository.ProductRepository, productCache *cache.ProductCache, searcher ProductSearcher, images ImageUploader, auditLog audit.Logger) *CatalogService {
	return &CatalogService{products: products, cache: productCache, search: searcher, images: images, audit: auditLog}
}

func (s *CatalogService) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	filter.Search = strings.TrimSpace(filter.Search)

	var (
		list []models.Product
		err  error
	)
	if s.cache != nil {
		list, err = s.cache.LoadList(ctx, filter, func(ctx context.Context) ([]models.Product, error) {
			return s.load(ctx, filter)
		})
	} else {
		list, err = s.load(ctx, filter)
	}
	if err != nil {
		return nil, apperr.Server(err)
	}

	out := make([]models.Product, len(list))
	for i, p := range list {
		out[i] = utils.OptimizeProductImages(p)
	}
	return out, nil
}

// load interroge Elasticsearch pour une recherche texte et retombe sur MongoDB
// si l'index est absent ou en erreur.
func (s *CatalogService) load(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	if s.search != nil && filter.Search != "" {
		products, err := s.searchProducts(ctx, filter)
		if err == nil {
			return products, nil
		}
		log.Printf("⚠️ Recherche Elasticsearch indisponible, repli MongoDB: %v", err)
	}
	return s.products.List(ctx, filter)
}

func (s *CatalogService) searchProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	hits, err := s.search.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(hits))
	for _, h := range hits {
		if id, err := primitive.ObjectIDFromHex(h); err == nil {
			ids = append(ids, id)
		}
	}
	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	// FindByIDs ne garantit pas l'ordre; on garde celui de la pertinence.
	byID := make(map[primitive.ObjectID]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	out := make([]models.Product, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *CatalogService) Get(ctx context.Context, rawID string) (*models.Product, error) {
	id, err := parseID(rawID, "Product ID is required.", "Invalid product ID format.")
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if p, err := s.cache.Get(ctx, rawID); err == nil {
			optimized := utils.OptimizeProductImages(*p)
			return &optimized, nil
		} else if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("⚠️ Lecture cache produit %s: %v", rawID, err)
		}
	}

	p, err := requireProduct(ctx, s.products, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, p); err != nil {
			log.Printf("⚠️ Écriture cache produit %s: %v", rawID, err)
		}
	}
	optimized := utils.OptimizeProductImages(*p)
	return &optimized, nil
}

func (s *CatalogService) Create(ctx context.Context, in models.ProductInput) (*models.Product, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" || in.Price == nil {
		return nil, apperr.Validation("Product name and price are required")
	}
	if err := validateProductInput(in); err != nil {
		return nil, err
	}

	p := &models.Product{Name: strings.TrimSpace(*in.Name), Price: *in.Price, Category: models.DefaultCategory, Images: []string{}}
	applyProductInput(p, in)

	err := s.products.Create(ctx, p)
	audit.Record(ctx, s.audit, models.ActionProductCreate, models.ResourceProduct, p.ID.Hex(), p, err)
	if err != nil {
		return nil, apperr.Server(err)
	}
	s.refresh(ctx, p)
	return p, nil
}

func (s *CatalogService) Update(ctx context.Context, rawID string, in models.ProductInput) (*models.Product, error) {
	id, err := parseID(rawID, "Product ID is required.", "Invalid product ID format.")
	if err != nil {
		return nil, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, apperr.Validation("Product name cannot be empty")
	}
	if err := validateProductInput(in); err != nil {
		return nil, err
	}

	p, err := s.products.Update(ctx, id, in)
	audit.Record(ctx, s.audit, models.ActionProductUpdate, models.ResourceProduct, rawID, in, err)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("Product not found")
	}
	if err != nil {
		return nil, apperr.Server(err)
	}
	s.refresh(ctx, p)
	return p, nil
}

func (s *CatalogService) Delete(ctx context.Context, rawID string) error {
	id, err := parseID(rawID, "Product ID is required.", "Invalid product ID format.")
	if err != nil {
		return err
	}

	err = s.products.Delete(ctx, id)
	audit.Record(ctx, s.audit, models.ActionProductDelete, models.ResourceProduct, rawID, nil, err)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("Product not found")
	}
	if err != nil {
		return apperr.Server(err)
	}

	s.invalidate(ctx, rawID)
	if s.search != nil {
		if err := s.search.DeleteProduct(ctx, rawID); err != nil {
			log.Printf("⚠️ Suppression de l'index pour %s: %v", rawID, err)
		}
	}
	return nil
}

// UploadImage envoie l'image dans le stockage objet et l'ajoute au produit.
func (s *CatalogService) UploadImage(ctx context.Context, rawID, filename string, r io.Reader, size int64, contentType string) (*models.Product, error) {
	if s.images == nil {
		return nil, &apperr.Error{Kind: apperr.KindServer, Message: "Image storage is not configured"}
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, apperr.Validation("Only image files are allowed")
	}
	id, err := parseID(rawID, "Product ID is required.", "Invalid product ID format.")
	if err != nil {
		return nil, err
	}
	if _, err := requireProduct(ctx, s.products, id); err != nil {
		return nil, err
	}

	url, err := s.images.Upload(ctx, rawID, filename, r, size, contentType)
	if err != nil {
		return nil, apperr.Server(err)
	}
	p, err := s.products.AddImage(ctx, id, url)
	audit.Record(ctx, s.audit, models.ActionProductImage, models.ResourceProduct, rawID, map[string]string{"url": url}, err)
	if err != nil {
		return nil, apperr.Server(err)
	}
	s.invalidate(ctx, rawID)
	return p, nil
}

// refresh invalide les caches et réindexe le produit après une écriture.
func (s *CatalogService) refresh(ctx context.Context, p *models.Product) {
	s.invalidate(ctx, p.ID.Hex())
	if s.search != nil {
		if err := s.search.IndexProduct(ctx, *p); err != nil {
			log.Printf("⚠️ Indexation de %s: %v", p.Name, err)
		}
	}
}

func (s *CatalogService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		log.Printf("⚠️ Invalidation du cache produit %s: %v", id, err)
	}
}

func validateProductInput(in models.ProductInput) error {
	if in.Price != nil && *in.Price < 0 {
		return apperr.Validation("Price cannot be negative")
	}
	if in.Stock != nil && *in.Stock < 0 {
		return apperr.Validation("Stock cannot be negative")
	}
	if in.Category != nil && !models.IsValidCategory(*in.Category) {
		return apperr.Validation("Invalid category")
	}
	return nil
}

func applyProductInput(p *models.Product, in models.ProductInput) {
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Images != nil {
		p.Images = *in.Images
	}
	if in.Brand != nil {
		p.Brand = *in.Brand
	}
	if in.Tags != nil {
		p.Tags = *in.Tags
	}
	if in.Ratings != nil {
		p.Ratings = *in.Ratings
	}
	if in.NumReviews != nil {
		p.NumReviews = *in.NumReviews
	}
	if in.Sizes != nil {
		p.Sizes = *in.Sizes
	}
}
