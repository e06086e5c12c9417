package storefront

import (
	"context"
	"sync"

	"furniro_back_end/internal/models"
)

// Session est la session authentifiée conservée côté client.
type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// CartEntry garde le produit complet pour afficher le panier hors ligne.
type CartEntry struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

// Snapshot est l'état persisté entre deux lancements.
type Snapshot struct {
	Session   *Session
	Cart      []CartEntry
	Favorites []models.Product
}

// Store persiste l'état client. Chaque Save remplace entièrement le domaine concerné;
// une session nil ou une liste vide efface le domaine.
type Store interface {
	Load(ctx context.Context) (Snapshot, error)
	SaveSession(ctx context.Context, s *Session) error
	SaveCart(ctx context.Context, items []CartEntry) error
	SaveFavorites(ctx context.Context, products []models.Product) error
}

// MemoryStore est un Store volatil pour les tests et le mode sans fichier.
type MemoryStore struct {
	mu   sync.RWMutex
	snap Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(_ context.Context) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := Snapshot{
		Cart:      cloneCart(m.snap.Cart),
		Favorites: cloneProducts(m.snap.Favorites),
	}
	if m.snap.Session != nil {
		s := *m.snap.Session
		out.Session = &s
	}
	return out, nil
}

func (m *MemoryStore) SaveSession(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s == nil {
		m.snap.Session = nil
		return nil
	}
	cp := *s
	m.snap.Session = &cp
	return nil
}

func (m *MemoryStore) SaveCart(_ context.Context, items []CartEntry) error {
	m.mu.Lock()
	m.snap.Cart = cloneCart(items)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) SaveFavorites(_ context.Context, products []models.Product) error {
	m.mu.Lock()
	m.snap.Favorites = cloneProducts(products)
	m.mu.Unlock()
	return nil
}

func cloneCart(items []CartEntry) []CartEntry {
	if len(items) == 0 {
		return nil
	}
	return append([]CartEntry(nil), items...)
}

func cloneProducts(products []models.Product) []models.Product {
	if len(products) == 0 {
		return nil
	}
	return append([]models.Product(nil), products...)
}
