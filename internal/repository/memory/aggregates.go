package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"furniro_back_end/internal/models"
	"furniro_back_end/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Carts ---

type Carts struct {
	mu    sync.Mutex
	carts map[primitive.ObjectID]*models.Cart
}

func NewCarts() *Carts {
	return &Carts{carts: make(map[primitive.ObjectID]*models.Cart)}
}

func (r *Carts) Get(_ context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[userID]
	if !ok {
		return &models.Cart{User: userID, Items: []models.CartItem{}}, nil
	}
	out := *cart
	out.Items = append([]models.CartItem{}, cart.Items...)
	return &out, nil
}

func (r *Carts) cart(userID primitive.ObjectID) *models.Cart {
	cart, ok := r.carts[userID]
	if !ok {
		cart = &models.Cart{ID: primitive.NewObjectID(), User: userID, Items: []models.CartItem{}}
		r.carts[userID] = cart
	}
	return cart
}

func (r *Carts) AddItem(_ context.Context, userID, productID primitive.ObjectID, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart := r.cart(userID)
	cart.UpdatedAt = time.Now()
	for i := range cart.Items {
		if cart.Items[i].Product == productID {
			cart.Items[i].Quantity += quantity
			return nil
		}
	}
	cart.Items = append(cart.Items, models.CartItem{Product: productID, Quantity: quantity})
	return nil
}

func (r *Carts) DecreaseItem(_ context.Context, userID, productID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[userID]
	if !ok {
		return repository.ErrNotFound
	}
	for i := range cart.Items {
		if cart.Items[i].Product != productID {
			continue
		}
		if cart.Items[i].Quantity > 1 {
			cart.Items[i].Quantity--
		} else {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
		}
		cart.UpdatedAt = time.Now()
		return nil
	}
	return repository.ErrNotFound
}

func (r *Carts) SetQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error {
	if quantity <= 0 {
		return r.RemoveItem(ctx, userID, productID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cart := r.cart(userID)
	cart.UpdatedAt = time.Now()
	for i := range cart.Items {
		if cart.Items[i].Product == productID {
			cart.Items[i].Quantity = quantity
			return nil
		}
	}
	cart.Items = append(cart.Items, models.CartItem{Product: productID, Quantity: quantity})
	return nil
}

func (r *Carts) RemoveItem(_ context.Context, userID, productID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cart, ok := r.carts[userID]
	if !ok {
		return repository.ErrNotFound
	}
	for i := range cart.Items {
		if cart.Items[i].Product == productID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			cart.UpdatedAt = time.Now()
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *Carts) Clear(_ context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cart, ok := r.carts[userID]; ok {
		cart.Items = []models.CartItem{}
		cart.UpdatedAt = time.Now()
	}
	return nil
}

// --- Favorites ---

type Favorites struct {
	mu   sync.Mutex
	favs map[primitive.ObjectID][]primitive.ObjectID
}

func NewFavorites() *Favorites {
	return &Favorites{favs: make(map[primitive.ObjectID][]primitive.ObjectID)}
}

func (r *Favorites) Get(_ context.Context, userID primitive.ObjectID) (*models.Favorites, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &models.Favorites{User: userID, Products: append([]primitive.ObjectID{}, r.favs[userID]...)}, nil
}

func (r *Favorites) Add(_ context.Context, userID, productID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.favs[userID] {
		if id == productID {
			return repository.ErrDuplicate
		}
	}
	r.favs[userID] = append(r.favs[userID], productID)
	return nil
}

func (r *Favorites) AddMany(_ context.Context, userID primitive.ObjectID, productIDs []primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing := make(map[primitive.ObjectID]bool, len(r.favs[userID]))
	for _, id := range r.favs[userID] {
		existing[id] = true
	}
	for _, id := range productIDs {
		if !existing[id] {
			existing[id] = true
			r.favs[userID] = append(r.favs[userID], id)
		}
	}
	return nil
}

func (r *Favorites) Remove(_ context.Context, userID, productID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := r.favs[userID]
	for i, id := range ids {
		if id == productID {
			r.favs[userID] = append(ids[:i:i], ids[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *Favorites) Clear(_ context.Context, userID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.favs, userID)
	return nil
}

func (r *Favorites) Contains(_ context.Context, userID, productID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.favs[userID] {
		if id == productID {
			return true, nil
		}
	}
	return false, nil
}

// --- Orders ---

type Orders struct {
	mu     sync.RWMutex
	orders map[primitive.ObjectID]models.Order
}

func NewOrders() *Orders {
	return &Orders{orders: make(map[primitive.ObjectID]models.Order)}
}

func (r *Orders) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	stored := *order
	stored.OrderItems = append([]models.OrderItem(nil), order.OrderItems...)
	r.orders[order.ID] = stored
	return nil
}

func (r *Orders) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	o.OrderItems = append([]models.OrderItem(nil), o.OrderItems...)
	return &o, nil
}

func (r *Orders) ListByUser(_ context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Order{}
	for _, o := range r.orders {
		if o.User == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *Orders) UpdateStatus(_ context.Context, order *models.Order, expected string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.orders[order.ID]
	if !ok || stored.OrderStatus != expected {
		return repository.ErrConflict
	}
	stored.OrderStatus = order.OrderStatus
	stored.DeliveryTracking = order.DeliveryTracking
	stored.UpdatedAt = order.UpdatedAt
	r.orders[order.ID] = stored
	return nil
}

func (r *Orders) MarkPaid(_ context.Context, id primitive.ObjectID, transactionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	if o.PaymentStatus == models.OrderPaymentPaid && o.TransactionID != transactionID {
		return repository.ErrConflict
	}
	o.PaymentStatus = models.OrderPaymentPaid
	o.TransactionID = transactionID
	o.UpdatedAt = time.Now()
	r.orders[id] = o
	return nil
}

// --- Payments ---

type Payments struct {
	mu       sync.RWMutex
	payments map[primitive.ObjectID]models.Payment
}

func NewPayments() *Payments {
	return &Payments{payments: make(map[primitive.ObjectID]models.Payment)}
}

func (r *Payments) Create(_ context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.User == payment.User && p.TransactionID == payment.TransactionID {
			return repository.ErrDuplicate
		}
	}
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	now := time.Now()
	payment.CreatedAt, payment.UpdatedAt = now, now
	r.payments[payment.ID] = *payment
	return nil
}

func (r *Payments) FindByID(_ context.Context, id primitive.ObjectID) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *Payments) FindByTransaction(_ context.Context, userID primitive.ObjectID, transactionID string) (*models.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.payments {
		if p.User == userID && p.TransactionID == transactionID {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *Payments) Resolve(_ context.Context, id primitive.ObjectID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	if p.PaymentStatus != models.PaymentPending {
		return repository.ErrConflict
	}
	p.PaymentStatus = status
	p.UpdatedAt = time.Now()
	r.payments[id] = p
	return nil
}
