package storefront

import (
	"context"

	"furniro_back_end/internal/apperr"
	"furniro_back_end/internal/models"
)

// AddToCart ajoute qty unités; un produit déjà présent voit sa quantité augmenter.
func (a *App) AddToCart(product models.Product, qty int) error {
	if qty <= 0 {
		return apperr.Validation("Quantity must be a positive integer")
	}
	if product.ID.IsZero() {
		return apperr.Validation("Product ID is required")
	}

	a.mu.Lock()
	found := false
	for i := range a.cart {
		if a.cart[i].Product.ID == product.ID {
			a.cart[i].Quantity += qty
			found = true
			break
		}
	}
	if !found {
		a.cart = append(a.cart, CartEntry{Product: product, Quantity: qty})
	}
	a.mu.Unlock()

	a.persistCart()
	id := product.ID.Hex()
	a.enqueueRemote("cart.add", func(ctx context.Context) error {
		return a.api.AddToCart(ctx, id, qty)
	})
	return nil
}

func (a *App) RemoveFromCart(productID string) {
	a.mu.Lock()
	kept := a.cart[:0]
	for _, item := range a.cart {
		if item.Product.ID.Hex() != productID {
			kept = append(kept, item)
		}
	}
	a.cart = kept
	a.mu.Unlock()

	a.persistCart()
	a.enqueueRemote("cart.remove", func(ctx context.Context) error {
		return a.api.RemoveFromCart(ctx, productID)
	})
}

// SetQuantity fixe la quantité; qty <= 0 retire le produit.
func (a *App) SetQuantity(productID string, qty int) {
	if qty <= 0 {
		a.RemoveFromCart(productID)
		return
	}

	a.mu.Lock()
	found := false
	for i := range a.cart {
		if a.cart[i].Product.ID.Hex() == productID {
			a.cart[i].Quantity = qty
			found = true
			break
		}
	}
	a.mu.Unlock()
	if !found {
		return
	}

	a.persistCart()
	a.enqueueRemote("cart.set_quantity", func(ctx context.Context) error {
		return a.api.SetCartQuantity(ctx, productID, qty)
	})
}

func (a *App) ClearCart() {
	a.mu.Lock()
	a.cart = nil
	a.mu.Unlock()

	a.persistCart()
	a.enqueueRemote("cart.clear", a.api.ClearCart)
}

func (a *App) Cart() []CartEntry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return cloneCart(a.cart)
}

// CartTotal est la somme prix × quantité.
func (a *App) CartTotal() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var total int64
	for _, item := range a.cart {
		total += item.Product.Price * int64(item.Quantity)
	}
	return total
}

func (a *App) CartCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	count := 0
	for _, item := range a.cart {
		count += item.Quantity
	}
	return count
}

func (a *App) persistCart() {
	items := a.Cart()
	a.queue.Enqueue("cart.persist", func(ctx context.Context) error {
		return a.store.SaveCart(ctx, items)
	})
}
