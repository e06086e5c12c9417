package service

import (
	"context"
	"errors"

	"furniro_back_end/internal/apperr"
	"furniro_back_end/internal/cache"
	"furniro_back_end/internal/models"
	"furniro_back_end/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

var errNotInCart = apperr.NotFound("Product not found in cart")

type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	notifier *cache.CartNotifier
}

// NewCartService construit le service; notifier peut être nil.
func NewCartService(carts repository.CartRepository, products repository.ProductRepository, notifier *cache.CartNotifier) *CartService {
	return &CartService{carts: carts, products: products, notifier: notifier}
}

func (s *CartService) Get(ctx context.Context, userID string) (*models.CartView, error) {
	uid, err := userObjectID(userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, uid)
}

// Add ajoute quantity au produit; une ligne existante est cumulée.
func (s *CartService) Add(ctx context.Context, userID string, in CartItemInput) (*models.CartView, error) {
	uid, err := userObjectID(userID)
	if err != nil {
		return nil, err
	}
	if in.ProductID == "" || in.Quantity == 0 {
		return nil, apperr.Validation("Product ID and quantity are required")
	}
	if in.Quantity < 0 {
		return nil, apperr.Validation("Quantity must be a positive integer")
	}
	pid, err := parseID(in.ProductID, "Product ID and quantity are required", "Invalid Product ID")
	if err != nil {
		return nil, err
	}
	if _, err := requireProduct(ctx, s.products, pid); err != nil {
		return nil, err
	}

	if err := s.carts.AddItem(ctx, uid, pid, in.Quantity); err != nil {
		return nil, apperr.Server(err)
	}
	s.notify(ctx, userID, cache.CartEventUpdated, in.ProductID)
	return s.view(ctx, uid)
}

// Merge fusionne un panier client dans le panier serveur: chaque ligne est
// complétée jusqu'à la quantité locale sans jamais la dépasser, ce qui rend
// la fusion idempotente. Les produits inconnus sont ignorés.
func (s *CartService) Merge(ctx context.Context, userID string, items []CartItemInput) (*models.CartView, error) {
	uid, err := userObjectID(userID)
	if err != nil {
		return nil, err
	}

	wanted := make(map[primitive.ObjectID]int, len(items))
	ids := make([]primitive.ObjectID, 0, len(items))
	for _, it := range items {
		pid, err := parseID(it.ProductID, "Product ID and quantity are required", "Invalid Product ID")
		if err != nil {
			return nil, err
		}
		if it.Quantity < 1 {
			return nil, apperr.Validation("Quantity must be a positive integer")
		}
		if _, seen := wanted[pid]; !seen {
			ids = append(ids, pid)
		}
		wanted[pid] += it.Quantity
	}

	known, err := productsByID(ctx, s.products, ids)
	if err != nil {
		return nil, apperr.Server(err)
	}
	cart, err := s.carts.Get(ctx, uid)
	if err != nil {
		return nil, apperr.Server(err)
	}
	current := make(map[primitive.ObjectID]int, len(cart.Items))
	for _, it := range cart.Items {
		current[it.Product] = it.Quantity
	}

	changed := false
	for _, pid := range ids {
		if _, ok := known[pid]; !ok {
			continue
		}
		if current[pid] >= wanted[pid] {
			continue
		}
		if err := s.carts.SetQuantity(ctx, uid, pid, wanted[pid]); err != nil {
			return nil, apperr.Server(err)
		}
		changed = true
	}
	if changed {
		s.notify(ctx, userID, cache.CartEventUpdated, "")
	}
	return s.view(ctx, uid)
}

// Decrease retire une unité; la ligne disparaît quand elle tombe à zéro.
func (s *CartService) Decrease(ctx context.Context, userID, productID string) (*models.CartView, error) {
	uid, pid, err := s.ids(userID, productID)
	if err != nil {
		return nil, err
	}
	err = s.carts.DecreaseItem(ctx, uid, pid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errNotInCart
	}
	if err != nil {
		return nil, apperr.Server(err)
	}
	s.notify(ctx, userID, cache.CartEventUpdated, productID)
	return s.view(ctx, uid)
}

// SetQuantity fixe la quantité; zéro ou moins retire la ligne.
func (s *CartService) SetQuantity(ctx context.Context, userID, productID string, quantity int) (*models.CartView, error) {
	uid, pid, err := s.ids(userID, productID)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		err = s.carts.RemoveItem(ctx, uid, pid)
		if errors.Is(err, repository.ErrNotFound) {
			return s.view(ctx, uid)
		}
	} else {
		if _, err := requireProduct(ctx, s.products, pid); err != nil {
			return nil, err
		}
		err = s.carts.SetQuantity(ctx, uid, pid, quantity)
	}
	if err != nil {
		return nil, apperr.Server(err)
	}
	s.notify(ctx, userID, cache.CartEventUpdated, productID)
	return s.view(ctx, uid)
}

func (s *CartService) Remove(ctx context.Context, userID, productID string) (*models.CartView, error) {
	uid, pid, err := s.ids(userID, productID)
	if err != nil {
		return nil, err
	}
	err = s.carts.RemoveItem(ctx, uid, pid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errNotInCart
	}
	if err != nil {
		return nil, apperr.Server(err)
	}
	s.notify(ctx, userID, cache.CartEventUpdated, productID)
	return s.view(ctx, uid)
}

func (s *CartService) Clear(ctx context.Context, userID string) error {
	uid, err := userObjectID(userID)
	if err != nil {
		return err
	}
	if err := s.carts.Clear(ctx, uid); err != nil {
		return apperr.Server(err)
	}
	s.notify(ctx, userID, cache.CartEventCleared, "")
	return nil
}

func (s *CartService) ids(userID, productID string) (primitive.ObjectID, primitive.ObjectID, error) {
	uid, err := userObjectID(userID)
	if err != nil {
		return uid, uid, err
	}
	pid, err := parseID(productID, "Product ID is required", "Invalid Product ID")
	return uid, pid, err
}

func (s *CartService) view(ctx context.Context, uid primitive.ObjectID) (*models.CartView, error) {
	cart, err := s.carts.Get(ctx, uid)
	if err != nil {
		return nil, apperr.Server(err)
	}
	ids := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, it := range cart.Items {
		ids = append(ids, it.Product)
	}
	products, err := productsByID(ctx, s.products, ids)
	if err != nil {
		return nil, apperr.Server(err)
	}
	view := models.NewCartView(cart, products)
	return &view, nil
}

func (s *CartService) notify(ctx context.Context, userID, eventType, productID string) {
	s.notifier.Publish(ctx, userID, cache.CartEvent{Type: eventType, ProductID: productID})
}
