// Package storefront est le cœur applicatif côté client: panier et favoris locaux,
// synchronisation avec l'API à la connexion, catalogue mis en cache et checkout.
package storefront

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"furniro_back_end/internal/apperr"
	"furniro_back_end/internal/client"
	"furniro_back_end/internal/models"
)

// API est le sous-ensemble de *client.Client utilisé par l'application.
type API interface {
	SetToken(token string)
	Register(ctx context.Context, name, email, password string) (*client.AuthResponse, error)
	Login(ctx context.Context, email, password string) (*client.AuthResponse, error)
	Products(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)
	Product(ctx context.Context, id string) (*models.Product, error)

	Cart(ctx context.Context) (*models.CartView, error)
	MergeCart(ctx context.Context, items []client.CartItem) (*models.CartView, error)
	AddToCart(ctx context.Context, productID string, quantity int) error
	SetCartQuantity(ctx context.Context, productID string, quantity int) error
	RemoveFromCart(ctx context.Context, productID string) error
	ClearCart(ctx context.Context) error

	Favorites(ctx context.Context) ([]models.Product, error)
	MergeFavorites(ctx context.Context, productIDs []string) ([]models.Product, error)
	AddFavorite(ctx context.Context, productID string) error
	RemoveFavorite(ctx context.Context, productID string) error
	ClearFavorites(ctx context.Context) error

	CreateOrder(ctx context.Context, in models.OrderInput) (*models.Order, error)
	Orders(ctx context.Context) ([]models.OrderView, error)
	CreatePaymentIntent(ctx context.Context, amount float64, orderID, currency string) (*client.IntentResponse, error)
	ConfirmPayment(ctx context.Context, intentID, orderID string) (*client.ConfirmResponse, error)
}

var _ API = (*client.Client)(nil)

var errLoginRequired = apperr.Auth("Please login to continue")

// App détient l'état client. Les mutations locales sont synchrones; la persistance
// et la propagation vers le serveur passent par le Dispatcher.
type App struct {
	api      API
	store    Store
	queue    *Dispatcher
	notifier *Notifier
	products *productMemo

	mu        sync.RWMutex
	session   *Session
	cart      []CartEntry
	favorites []models.Product
}

type Options struct {
	QueueSize   int
	TaskTimeout time.Duration
	Notifier    *Notifier
}

func New(api API, store Store, opts Options) *App {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = NewNotifier(NotificationTTL, nil)
	}
	return &App{
		api:      api,
		store:    store,
		queue:    NewDispatcher(opts.QueueSize, opts.TaskTimeout),
		notifier: notifier,
		products: newProductMemo(ProductCacheTTL),
	}
}

// Init recharge l'état persisté.
func (a *App) Init(ctx context.Context) error {
	snap, err := a.store.Load(ctx)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.session = snap.Session
	a.cart = snap.Cart
	a.favorites = snap.Favorites
	a.mu.Unlock()

	if snap.Session != nil {
		a.api.SetToken(snap.Session.Token)
	}
	return nil
}

// Close termine les tâches en attente.
func (a *App) Close() {
	a.queue.Close()
}

// Wait attend la fin des tâches d'arrière-plan déjà soumises.
func (a *App) Wait() {
	a.queue.Wait()
}

func (a *App) Notifier() *Notifier { return a.notifier }

func (a *App) Session() (Session, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.session == nil {
		return Session{}, false
	}
	return *a.session, true
}

func (a *App) LoggedIn() bool {
	_, ok := a.Session()
	return ok
}

// Register crée le compte puis synchronise comme Login.
func (a *App) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	res, err := a.api.Register(ctx, name, email, password)
	if err != nil {
		a.notifier.Error(errorMessage(err))
		return nil, err
	}
	a.authenticated(ctx, res)
	a.notifier.Success("Registration successful! Welcome to Furniro.")
	return &res.User, nil
}

func (a *App) Login(ctx context.Context, email, password string) (*models.User, error) {
	res, err := a.api.Login(ctx, email, password)
	if err != nil {
		a.notifier.Error(errorMessage(err))
		return nil, err
	}
	a.authenticated(ctx, res)
	a.notifier.Success("Login successful! Welcome back.")
	return &res.User, nil
}

func (a *App) authenticated(ctx context.Context, res *client.AuthResponse) {
	session := &Session{Token: res.Token, User: res.User}
	a.api.SetToken(res.Token)

	a.mu.Lock()
	a.session = session
	a.mu.Unlock()

	if err := a.store.SaveSession(ctx, session); err != nil {
		log.Printf("⚠️ Session non persistée: %v", err)
	}
	// L'état local reste le dernier état connu si la synchronisation échoue.
	if err := a.SyncOnLogin(ctx); err != nil {
		log.Printf("⚠️ Synchronisation à la connexion échouée: %v", err)
	}
}

// Logout vide la session, le panier et les favoris, en mémoire comme sur disque.
func (a *App) Logout(ctx context.Context) error {
	a.queue.Wait()

	a.mu.Lock()
	a.session = nil
	a.cart = nil
	a.favorites = nil
	a.mu.Unlock()
	a.api.SetToken("")

	err := errors.Join(
		a.store.SaveSession(ctx, nil),
		a.store.SaveCart(ctx, nil),
		a.store.SaveFavorites(ctx, nil),
	)
	a.notifier.Success("Logout successful! See you soon.")
	return err
}

// Products renvoie le catalogue, mis en cache 30 minutes par filtre.
func (a *App) Products(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	products, err := a.products.get(ctx, filter, a.api.Products)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.notifier.Error(errorMessage(err))
	}
	return products, err
}

func (a *App) Product(ctx context.Context, id string) (*models.Product, error) {
	p, err := a.api.Product(ctx, id)
	if err != nil {
		a.notifier.Error(errorMessage(err))
		return nil, err
	}
	return p, nil
}

// RefreshProducts oublie le catalogue en cache.
func (a *App) RefreshProducts() {
	a.products.invalidate()
}

func (a *App) Orders(ctx context.Context) ([]models.OrderView, error) {
	if !a.LoggedIn() {
		return nil, errLoginRequired
	}
	orders, err := a.api.Orders(ctx)
	if err != nil {
		a.notifier.Error(errorMessage(err))
		return nil, err
	}
	return orders, nil
}

// enqueueRemote propage une mutation au serveur si une session est ouverte.
func (a *App) enqueueRemote(name string, run func(ctx context.Context) error) {
	if !a.LoggedIn() {
		return
	}
	a.queue.Enqueue(name, run)
}

func errorMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Network error, please try again"
}
