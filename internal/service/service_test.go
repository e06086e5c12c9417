package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"furniro_back_end/internal/apperr"
	"furniro_back_end/internal/events"
	"furniro_back_end/internal/models"
	"furniro_back_end/internal/repository"
	"furniro_back_end/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newRepos() *repository.Repositories {
	return memory.NewRepositories()
}

func seedProduct(t *testing.T, repos *repository.Repositories, name string, price int64) models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: price, Category: models.DefaultCategory, Images: []string{}}
	require.NoError(t, repos.Products.Create(context.Background(), p))
	return *p
}

func newUserID() string {
	return primitive.NewObjectID().Hex()
}

func requireAppErr(t *testing.T, err error, kind apperr.Kind, msg string) {
	t.Helper()
	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, kind, appErr.Kind, appErr.Message)
	if msg != "" {
		assert.Equal(t, msg, appErr.Message)
	}
}

// recordingPublisher garde les événements publiés.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// recordingMailer garde les e-mails envoyés.
type recordingMailer struct {
	mu            sync.Mutex
	confirmations []models.OrderView
	statuses      []string
}

func (m *recordingMailer) SendOrderConfirmation(_ context.Context, order models.OrderView, _ []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.confirmations = append(m.confirmations, order)
}

func (m *recordingMailer) SendOrderStatus(_ context.Context, order models.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, order.OrderStatus)
}

func (m *recordingMailer) Close() {}

type counter struct {
	mu     sync.Mutex
	orders int
	paid   map[string]int
}

func (c *counter) OrderCreated() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orders++
}

func (c *counter) PaymentResolved(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paid == nil {
		c.paid = map[string]int{}
	}
	c.paid[status]++
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func mustOID(t *testing.T, hex string) primitive.ObjectID {
	t.Helper()
	id, err := primitive.ObjectIDFromHex(hex)
	require.NoError(t, err)
	return id
}
