package storefront

import (
	"context"
	"sync"
	"time"

	"furniro_back_end/internal/models"
)

const ProductCacheTTL = 30 * time.Minute

type productEntry struct {
	products  []models.Product
	fetchedAt time.Time
}

type fetchFunc func(ctx context.Context, filter models.ProductFilter) ([]models.Product, error)

// productMemo garde chaque liste 30 minutes par filtre. Une nouvelle requête
// annule celle encore en cours.
type productMemo struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	entries  map[string]productEntry
	inflight context.CancelFunc
	seq      uint64
}

func newProductMemo(ttl time.Duration) *productMemo {
	return &productMemo{ttl: ttl, now: time.Now, entries: make(map[string]productEntry)}
}

func (m *productMemo) get(ctx context.Context, filter models.ProductFilter, fetch fetchFunc) ([]models.Product, error) {
	key := filter.CacheKey()

	m.mu.Lock()
	if e, ok := m.entries[key]; ok && m.now().Sub(e.fetchedAt) < m.ttl {
		m.mu.Unlock()
		return e.products, nil
	}
	if m.inflight != nil {
		m.inflight()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	m.seq++
	seq := m.seq
	m.inflight = cancel
	m.mu.Unlock()

	products, err := fetch(fetchCtx, filter)
	superseded := fetchCtx.Err() != nil && ctx.Err() == nil
	cancel()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seq == seq {
		m.inflight = nil
	}
	if err != nil {
		if superseded {
			return nil, context.Canceled
		}
		return nil, err
	}
	m.entries[key] = productEntry{products: products, fetchedAt: m.now()}
	return products, nil
}

func (m *productMemo) invalidate() {
	m.mu.Lock()
	m.entries = make(map[string]productEntry)
	m.mu.Unlock()
}
