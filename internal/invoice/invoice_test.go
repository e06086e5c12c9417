package invoice

import (
	"context"
	"strings"
	"testing"
	"time"

	"furniro_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func sampleView() models.OrderView {
	product := models.Product{ID: primitive.NewObjectID(), Name: "Lolito", Price: 700000}
	order := models.Order{
		ID:             primitive.NewObjectID(),
		BillingDetails: models.BillingDetails{FirstName: "Ana", LastName: "Roy", Email: "ana@example.com"},
		OrderItems: []models.OrderItem{
			{Product: product.ID, Quantity: 2},
			{Product: primitive.NewObjectID(), Quantity: 1},
		},
		PaymentMethod: models.PaymentMethodUPI,
		Subtotal:      1400000,
		TotalAmount:   1400000,
		OrderStatus:   models.StatusProcessing,
		CreatedAt:     time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC),
	}
	return models.NewOrderView(order, map[primitive.ObjectID]models.Product{product.ID: product})
}

func TestTrackingQR(t *testing.T) {
	qr, err := TrackingQR("http://localhost:5173/orders/abc")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(qr, "data:image/png;base64,"))
}

func TestHTML(t *testing.T) {
	r := NewRenderer("http://localhost:5173/", "", false)
	view := sampleView()

	html, err := r.HTML(view)
	require.NoError(t, err)
	body := string(html)

	assert.Contains(t, body, view.ID.Hex())
	assert.Contains(t, body, "Lolito")
	assert.Contains(t, body, "Rs. 1400000")
	assert.Contains(t, body, "Unavailable product")
	assert.Contains(t, body, "09/03/2024")
	assert.Contains(t, body, `src="data:image/png;base64,`)
}

func TestRender_FallsBackToHTML(t *testing.T) {
	r := NewRenderer("http://localhost:5173", "", false)
	view := sampleView()

	doc, err := r.Render(context.Background(), view)
	require.NoError(t, err)
	assert.Equal(t, ContentTypeHTML, doc.ContentType)
	assert.Equal(t, "invoice-"+view.ID.Hex()+".html", doc.Filename)
	assert.Nil(t, r.PDF(context.Background(), view))
}

func TestRender_MissingChromeFallsBack(t *testing.T) {
	r := NewRenderer("http://localhost:5173", "/nonexistent/chrome", true)
	r.timeout = 2 * time.Second

	doc, err := r.Render(context.Background(), sampleView())
	require.NoError(t, err)
	assert.Equal(t, ContentTypeHTML, doc.ContentType)
}
