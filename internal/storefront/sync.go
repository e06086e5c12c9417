package storefront

import (
	"context"
	"fmt"
	"log"

	"furniro_back_end/internal/client"
	"furniro_back_end/internal/models"
)

// SyncOnLogin pousse l'état local anonyme vers le serveur, puis remplace l'état local
// par l'agrégat fusionné renvoyé. Les favoris passent avant le panier. En cas d'échec
// le domaine concerné garde son dernier état connu.
func (a *App) SyncOnLogin(ctx context.Context) error {
	if !a.LoggedIn() {
		return errLoginRequired
	}
	// Les mutations locales déjà en file doivent partir avant la fusion.
	a.queue.Wait()

	if err := a.syncFavorites(ctx); err != nil {
		return fmt.Errorf("synchronisation des favoris: %w", err)
	}
	if err := a.syncCart(ctx); err != nil {
		return fmt.Errorf("synchronisation du panier: %w", err)
	}
	return nil
}

func (a *App) syncFavorites(ctx context.Context) error {
	local := a.Favorites()

	var (
		merged []models.Product
		err    error
	)
	if len(local) > 0 {
		ids := make([]string, 0, len(local))
		for _, p := range local {
			ids = append(ids, p.ID.Hex())
		}
		merged, err = a.api.MergeFavorites(ctx, ids)
	} else {
		merged, err = a.api.Favorites(ctx)
	}
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.favorites = cloneProducts(merged)
	a.mu.Unlock()

	// L'état persisté devient celui du serveur; l'état anonyme est écrasé.
	if err := a.store.SaveFavorites(ctx, merged); err != nil {
		log.Printf("⚠️ Favoris non persistés: %v", err)
	}
	log.Printf("✅ Favoris synchronisés (%d produits)", len(merged))
	return nil
}

func (a *App) syncCart(ctx context.Context) error {
	local := a.Cart()

	var (
		view *models.CartView
		err  error
	)
	if len(local) > 0 {
		items := make([]client.CartItem, 0, len(local))
		for _, item := range local {
			items = append(items, client.CartItem{ProductID: item.Product.ID.Hex(), Quantity: item.Quantity})
		}
		view, err = a.api.MergeCart(ctx, items)
	} else {
		view, err = a.api.Cart(ctx)
	}
	if err != nil {
		return err
	}

	merged := cartFromView(view)
	a.mu.Lock()
	a.cart = merged
	a.mu.Unlock()

	if err := a.store.SaveCart(ctx, merged); err != nil {
		log.Printf("⚠️ Panier non persisté: %v", err)
	}
	log.Printf("✅ Panier synchronisé (%d articles)", len(merged))
	return nil
}

// cartFromView ignore les lignes dont le produit n'existe plus.
func cartFromView(view *models.CartView) []CartEntry {
	if view == nil {
		return nil
	}
	out := make([]CartEntry, 0, len(view.Items))
	for _, line := range view.Items {
		if line.Product == nil || line.Quantity <= 0 {
			continue
		}
		out = append(out, CartEntry{Product: *line.Product, Quantity: line.Quantity})
	}
	return out
}
