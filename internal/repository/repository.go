// Package repository contient l'accès MongoDB aux agrégats de la boutique.
package repository

import (
	"context"
	"errors"

	"furniro_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound  = errors.New("document introuvable")
	ErrDuplicate = errors.New("document déjà existant")
	// ErrConflict signale qu'un document a changé entre la lecture et l'écriture.
	ErrConflict = errors.New("modification concurrente")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	LinkGoogle(ctx context.Context, id primitive.ObjectID, googleID, avatar string) error
	UpdateRole(ctx context.Context, id primitive.ObjectID, role string) error
}

type ProductRepository interface {
	List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id primitive.ObjectID, input models.ProductInput) (*models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	AddImage(ctx context.Context, id primitive.ObjectID, url string) (*models.Product, error)
}

// CartRepository applique chaque mutation en une seule écriture atomique.
type CartRepository interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error
	DecreaseItem(ctx context.Context, userID, productID primitive.ObjectID) error
	SetQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error
	RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) error
	Clear(ctx context.Context, userID primitive.ObjectID) error
}

type FavoritesRepository interface {
	Get(ctx context.Context, userID primitive.ObjectID) (*models.Favorites, error)
	// Add retourne ErrDuplicate si le produit est déjà en favori.
	Add(ctx context.Context, userID, productID primitive.ObjectID) error
	AddMany(ctx context.Context, userID primitive.ObjectID, productIDs []primitive.ObjectID) error
	Remove(ctx context.Context, userID, productID primitive.ObjectID) error
	Clear(ctx context.Context, userID primitive.ObjectID) error
	Contains(ctx context.Context, userID, productID primitive.ObjectID) (bool, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	// UpdateStatus écrit le statut et le suivi si le statut stocké vaut encore expected.
	UpdateStatus(ctx context.Context, order *models.Order, expected string) error
	// MarkPaid est idempotent pour une même transaction; ErrConflict si la
	// commande est déjà payée par une autre.
	MarkPaid(ctx context.Context, id primitive.ObjectID, transactionID string) error
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error)
	FindByTransaction(ctx context.Context, userID primitive.ObjectID, transactionID string) (*models.Payment, error)
	// Resolve passe un paiement Pending à status; ErrConflict s'il n'est plus Pending.
	Resolve(ctx context.Context, id primitive.ObjectID, status string) error
}

// Repositories regroupe les implémentations utilisées par les services.
type Repositories struct {
	Users     UserRepository
	Products  ProductRepository
	Carts     CartRepository
	Favorites FavoritesRepository
	Orders    OrderRepository
	Payments  PaymentRepository
}
