// Package gateway abstrait le prestataire de paiement: une simulation locale
// par défaut, Stripe en mode test quand il est configuré.
package gateway

import (
	"context"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultPublishableKey = "pk_test_dummy_key_for_demo"
	DefaultSuccessRate    = 0.9

	StatusRequiresPaymentMethod = "requires_payment_method"
)

// Intent est l'intention de paiement créée chez le prestataire.
type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64 // unités mineures
	Currency     string
	Status       string
	Created      int64
	Metadata     map[string]string
}

type Gateway interface {
	CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*Intent, error)
	// Confirm résout l'intention; false signifie un refus du prestataire.
	Confirm(ctx context.Context, intentID string) (bool, error)
	PublishableKey() string
}

// Simulated accepte une confirmation avec la probabilité successRate.
type Simulated struct {
	mu             sync.Mutex
	rnd            *rand.Rand
	successRate    float64
	publishableKey string
	now            func() time.Time
}

// NewSimulated construit la passerelle simulée; src nil utilise une source horodatée.
func NewSimulated(successRate float64, publishableKey string, src rand.Source) *Simulated {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	if successRate < 0 || successRate > 1 {
		successRate = DefaultSuccessRate
	}
	if publishableKey == "" {
		publishableKey = DefaultPublishableKey
	}
	return &Simulated{
		rnd:            rand.New(src),
		successRate:    successRate,
		publishableKey: publishableKey,
		now:            time.Now,
	}
}

func (s *Simulated) CreateIntent(_ context.Context, amount int64, currency string, metadata map[string]string) (*Intent, error) {
	now := s.now()
	s.mu.Lock()
	suffix := s.base36(9)
	s.mu.Unlock()

	id := "pi_dummy_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + suffix
	return &Intent{
		ID:           id,
		ClientSecret: id + "_secret_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16],
		Amount:       amount,
		Currency:     currency,
		Status:       StatusRequiresPaymentMethod,
		Created:      now.Unix(),
		Metadata:     metadata,
	}, nil
}

func (s *Simulated) Confirm(_ context.Context, _ string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64() < s.successRate, nil
}

func (s *Simulated) PublishableKey() string {
	return s.publishableKey
}

const base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

func (s *Simulated) base36(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = base36Alphabet[s.rnd.Intn(len(base36Alphabet))]
	}
	return string(b)
}
