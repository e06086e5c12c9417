// Package memory implémente les repositories en mémoire, pour les tests et
// pour lancer le serveur sans MongoDB (MONGO_URI=memory://).
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"furniro_back_end/internal/models"
	"furniro_back_end/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func NewRepositories() *repository.Repositories {
	return &repository.Repositories{
		Users:     NewUsers(),
		Products:  NewProducts(),
		Carts:     NewCarts(),
		Favorites: NewFavorites(),
		Orders:    NewOrders(),
		Payments:  NewPayments(),
	}
}

// --- Users ---

type Users struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

func NewUsers() *Users {
	return &Users{users: make(map[primitive.ObjectID]models.User)}
}

func (r *Users) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.users[user.ID] = *user
	return nil
}

func (r *Users) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *Users) FindByEmail(_ context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r *Users) FindByGoogleID(_ context.Context, googleID string) (*models.User, error) {
	return r.find(func(u models.User) bool { return googleID != "" && u.GoogleID == googleID })
}

func (r *Users) find(match func(models.User) bool) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Users) LinkGoogle(_ context.Context, id primitive.ObjectID, googleID, avatar string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.GoogleID = googleID
	u.AuthProvider = models.ProviderGoogle
	if avatar != "" {
		u.Avatar = avatar
	}
	u.UpdatedAt = time.Now()
	r.users[id] = u
	return nil
}

func (r *Users) UpdateRole(_ context.Context, id primitive.ObjectID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now()
	r.users[id] = u
	return nil
}

// --- Products ---

type Products struct {
	mu       sync.RWMutex
	products map[primitive.ObjectID]models.Product
}

func NewProducts() *Products {
	return &Products{products: make(map[primitive.ObjectID]models.Product)}
}

func (r *Products) List(_ context.Context, filter models.ProductFilter) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	out := []models.Product{}
	for _, p := range r.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.Name), search) &&
			!strings.Contains(strings.ToLower(p.Description), search) &&
			!strings.Contains(strings.ToLower(p.Category), search) {
			continue
		}
		out = append(out, cloneProduct(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Products) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p = cloneProduct(p)
	return &p, nil
}

func (r *Products) FindByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Product{}
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, cloneProduct(p))
		}
	}
	return out, nil
}

func (r *Products) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	now := time.Now()
	product.CreatedAt, product.UpdatedAt = now, now
	r.products[product.ID] = cloneProduct(*product)
	return nil
}

func (r *Products) Update(_ context.Context, id primitive.ObjectID, in models.ProductInput) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.Images != nil {
		p.Images = append([]string(nil), *in.Images...)
	}
	if in.Brand != nil {
		p.Brand = *in.Brand
	}
	if in.Tags != nil {
		p.Tags = append([]string(nil), *in.Tags...)
	}
	if in.Ratings != nil {
		p.Ratings = *in.Ratings
	}
	if in.NumReviews != nil {
		p.NumReviews = *in.NumReviews
	}
	if in.Sizes != nil {
		p.Sizes = append([]string(nil), *in.Sizes...)
	}
	p.UpdatedAt = time.Now()
	r.products[id] = p
	out := cloneProduct(p)
	return &out, nil
}

func (r *Products) Delete(_ context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *Products) AddImage(_ context.Context, id primitive.ObjectID, url string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Images = append(append([]string(nil), p.Images...), url)
	p.UpdatedAt = time.Now()
	r.products[id] = p
	out := cloneProduct(p)
	return &out, nil
}

func cloneProduct(p models.Product) models.Product {
	p.Images = append([]string(nil), p.Images...)
	p.Tags = append([]string(nil), p.Tags...)
	p.Sizes = append([]string(nil), p.Sizes...)
	return p
}
