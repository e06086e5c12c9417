package cache

import (
	"context"
	"errors"
	"log"
	"time"

	"furniro_back_end/internal/models"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	productListPrefix = "products:list:"
	productPrefix     = "products:item:"
)

// ProductCache met en cache les listes du catalogue et les fiches produit.
type ProductCache struct {
	store *Store
	sfg   singleflight.Group // évite les rafales de lectures Mongo sur un miss
}

func NewProductCache(client *redis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{store: NewStore(client, ttl, 5*time.Minute)}
}

func (c *ProductCache) GetList(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	var products []models.Product
	if err := c.store.GetJSON(ctx, productListPrefix+filter.CacheKey(), &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *ProductCache) SetList(ctx context.Context, filter models.ProductFilter, products []models.Product) error {
	return c.store.SetJSON(ctx, productListPrefix+filter.CacheKey(), products)
}

func (c *ProductCache) Get(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	if err := c.store.GetJSON(ctx, productPrefix+id, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *ProductCache) Set(ctx context.Context, p *models.Product) error {
	return c.store.SetJSON(ctx, productPrefix+p.ID.Hex(), p)
}

// Invalidate supprime la fiche du produit et toutes les listes, qui peuvent le contenir.
func (c *ProductCache) Invalidate(ctx context.Context, id string) error {
	if id != "" {
		if err := c.store.Delete(ctx, productPrefix+id); err != nil {
			return err
		}
	}
	return c.store.DeletePrefix(ctx, productListPrefix)
}

// LoadList lit la liste en cache ou la charge via load, une seule fois par filtre
// même sous requêtes concurrentes.
func (c *ProductCache) LoadList(ctx context.Context, filter models.ProductFilter, load func(context.Context) ([]models.Product, error)) ([]models.Product, error) {
	v, err, _ := c.sfg.Do(filter.CacheKey(), func() (interface{}, error) {
		products, err := c.GetList(ctx, filter)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			log.Printf("⚠️ Lecture cache produits: %v", err)
		}

		products, err = load(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.SetList(ctx, filter, products); err != nil {
			log.Printf("⚠️ Écriture cache produits: %v", err)
		}
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Product), nil
}
