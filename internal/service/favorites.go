package service

import (
	"context"
	"errors"

	"furniro_back_end/internal/apperr"
	"furniro_back_end/internal/models"
	"furniro_back_end/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FavoritesService struct {
	favorites repository.FavoritesRepository
	products  repository.ProductRepository
}

func NewFavoritesService(favorites repository.FavoritesRepository, products repository.ProductRepository) *FavoritesService {
	return &FavoritesService{favorites: favorites, products: products}
}

// Get renvoie les favoris; un produit supprimé du catalogue n'y figure plus.
func (s *FavoritesService) Get(ctx context.Context, userID string) (*models.FavoritesView, error) {
	uid, err := userObjectID(userID)
	if err != nil {
		return nil, err
	}
	favs, err := s.favorites.Get(ctx, uid)
	if err != nil {
		return nil, apperr.Server(err)
	}
	known, err := productsByID(ctx, s.products, favs.Products)
	if err != nil {
		return nil, apperr.Server(err)
	}
	view := &models.FavoritesView{User: uid, Products: make([]models.Product, 0, len(favs.Products))}
	for _, id := range favs.Products {
		if p, ok := known[id]; ok {
			view.Products = append(view.Products, p)
		}
	}
	return view, nil
}

func (s *FavoritesService) Add(ctx context.Context, userID, productID string) (*models.FavoritesView, error) {
	uid, err := userObjectID(userID)
	if err != nil {
		return nil, err
	}
	pid, err := parseID(productID, "Product ID is required", "Invalid product ID format")
	if err != nil {
		return nil, err
	}
	if _, err := requireProduct(ctx, s.products, pid); err != nil {
		return nil, err
	}

	err = s.favorites.Add(ctx, uid, pid)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperr.Validation("Product already in favorites")
	}
	if err != nil {
		return nil, apperr.Server(err)
	}
	return s.Get(ctx, userID)
}

// Merge ajoute plusieurs produits en une écriture; les doublons et les
// produits inconnus sont ignorés.
func (s *FavoritesService) Merge(ctx context.Context, userID string, productIDs []string) (*models.FavoritesView, error) {
	uid, err := userObjectID(userID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(productIDs))
	for _, raw := range productIDs {
		pid, err := parseID(raw, "Product ID is required", "Invalid product ID format")
		if err != nil {
			return nil, err
		}
		ids = append(ids, pid)
	}

	known, err := productsByID(ctx, s.products, ids)
	if err != nil {
		return nil, apperr.Server(err)
	}
	valid := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := known[id]; ok {
			valid = append(valid, id)
		}
	}
	if len(valid) > 0 {
		if err := s.favorites.AddMany(ctx, uid, valid); err != nil {
			return nil, apperr.Server(err)
		}
	}
	return s.Get(ctx, userID)
}

func (s *FavoritesService) Remove(ctx context.Context, userID, productID string) (*models.FavoritesView, error) {
	uid, err := userObjectID(userID)
	if err != nil {
		return nil, err
	}
	pid, err := parseID(productID, "Product ID is required", "Invalid product ID format")
	if err != nil {
		return nil, err
	}
	err = s.favorites.Remove(ctx, uid, pid)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Validation("Product not in favorites")
	}
	if err != nil {
		return nil, apperr.Server(err)
	}
	return s.Get(ctx, userID)
}

func (s *FavoritesService) Clear(ctx context.Context, userID string) error {
	uid, err := userObjectID(userID)
	if err != nil {
		return err
	}
	if err := s.favorites.Clear(ctx, uid); err != nil {
		return apperr.Server(err)
	}
	return nil
}

func (s *FavoritesService) Check(ctx context.Context, userID, productID string) (bool, error) {
	uid, err := userObjectID(userID)
	if err != nil {
		return false, err
	}
	pid, err := parseID(productID, "Product ID is required", "Invalid product ID format")
	if err != nil {
		return false, err
	}
	ok, err := s.favorites.Contains(ctx, uid, pid)
	if err != nil {
		return false, apperr.Server(err)
	}
	return ok, nil
}
