package storefront

import (
	"context"

	"furniro_back_end/internal/apperr"
	"furniro_back_end/internal/models"
)

// AddFavorite est sans effet si le produit est déjà en favori.
func (a *App) AddFavorite(product models.Product) error {
	if product.ID.IsZero() {
		return apperr.Validation("Product ID is required")
	}

	a.mu.Lock()
	for _, p := range a.favorites {
		if p.ID == product.ID {
			a.mu.Unlock()
			return nil
		}
	}
	a.favorites = append(a.favorites, product)
	a.mu.Unlock()

	a.persistFavorites()
	id := product.ID.Hex()
	a.enqueueRemote("favorites.add", func(ctx context.Context) error {
		return a.api.AddFavorite(ctx, id)
	})
	return nil
}

func (a *App) RemoveFavorite(productID string) {
	a.mu.Lock()
	kept := a.favorites[:0]
	removed := false
	for _, p := range a.favorites {
		if p.ID.Hex() == productID {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	a.favorites = kept
	a.mu.Unlock()
	if !removed {
		return
	}

	a.persistFavorites()
	a.enqueueRemote("favorites.remove", func(ctx context.Context) error {
		return a.api.RemoveFavorite(ctx, productID)
	})
}

func (a *App) ClearFavorites() {
	a.mu.Lock()
	a.favorites = nil
	a.mu.Unlock()

	a.persistFavorites()
	a.enqueueRemote("favorites.clear", a.api.ClearFavorites)
}

func (a *App) Favorites() []models.Product {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return cloneProducts(a.favorites)
}

func (a *App) IsFavorite(productID string) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, p := range a.favorites {
		if p.ID.Hex() == productID {
			return true
		}
	}
	return false
}

func (a *App) persistFavorites() {
	products := a.Favorites()
	a.queue.Enqueue("favorites.persist", func(ctx context.Context) error {
		return a.store.SaveFavorites(ctx, products)
	})
}
