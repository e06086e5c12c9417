package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"furniro_back_end/internal/config"
	"furniro_back_end/internal/gateway"
	"furniro_back_end/internal/models"
	"furniro_back_end/internal/repository"
	"furniro_back_end/internal/repository/memory"
	"furniro_back_end/internal/service"
	"furniro_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type testServer struct {
	engine *gin.Engine
	repos  *repository.Repositories
	orders *service.OrderService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.FromEnv()
	repos := memory.NewRepositories()
	tokens := utils.NewTokenIssuer("routes-test", time.Hour)
	auth := service.NewAuthService(repos.Users, tokens, nil, nil)
	orders := service.NewOrderService(service.OrderDeps{Orders: repos.Orders, Products: repos.Products})
	t.Cleanup(orders.Wait)

	engine := Setup(Deps{
		Config:    cfg,
		Tokens:    tokens,
		Auth:      auth,
		Catalog:   service.NewCatalogService(repos.Products, nil, nil, nil, nil),
		Carts:     service.NewCartService(repos.Carts, repos.Products, nil),
		Favorites: service.NewFavoritesService(repos.Favorites, repos.Products),
		Orders:    orders,
		Payments: service.NewPaymentService(service.PaymentDeps{
			Payments: repos.Payments,
			Orders:   repos.Orders,
			Gateway:  gateway.NewSimulated(1, "", rand.NewSource(1)),
		}),
	})
	return &testServer{engine: engine, repos: repos, orders: orders}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) register(t *testing.T, name, email string) (string, string) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{"name": name, "email": email, "password": "secret"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var res struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res.Token, res.User.ID.Hex()
}

func (s *testServer) seedProduct(t *testing.T, name string, price int64) models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: price, Category: models.DefaultCategory, Images: []string{}}
	require.NoError(t, s.repos.Products.Create(context.Background(), p))
	return *p
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "Ana", "ana@example.com")

	w := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "ana@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "ana@example.com", "password": "secret"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/auth/profile", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ana@example.com")
	assert.NotContains(t, w.Body.String(), "secret")

	w = s.do(t, http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGoogleDisabled(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/api/auth/google", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCartAndFavorites(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "Ana", "ana@example.com")
	sofa := s.seedProduct(t, "Asgaard sofa", 250000)

	w := s.do(t, http.MethodGet, "/api/cart", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/cart/add", token, gin.H{"productId": sofa.ID.Hex(), "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/cart", token, gin.H{"items": []gin.H{{"productId": sofa.ID.Hex(), "quantity": 5}}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	res := decode[struct {
		Cart models.CartView `json:"cart"`
	}](t, s.do(t, http.MethodGet, "/api/cart/get", token, nil))
	require.Len(t, res.Cart.Items, 1)
	assert.Equal(t, 5, res.Cart.Items[0].Quantity)
	assert.Equal(t, int64(1250000), res.Cart.Total)

	w = s.do(t, http.MethodPut, "/api/cart/"+sofa.ID.Hex(), token, gin.H{"quantity": 0})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(t, http.MethodDelete, "/api/cart/remove/"+sofa.ID.Hex(), token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/favorites/add", token, gin.H{"productId": sofa.ID.Hex()})
	assert.Equal(t, http.StatusCreated, w.Code)
	w = s.do(t, http.MethodPost, "/api/favorites/add", token, gin.H{"productId": sofa.ID.Hex()})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/favorites/check/"+sofa.ID.Hex(), token, nil)
	assert.JSONEq(t, `{"isFavorite":true}`, w.Body.String())
}

func TestOrderAndPayment(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "Ana", "ana@example.com")
	other, _ := s.register(t, "Bob", "bob@example.com")
	sofa := s.seedProduct(t, "Asgaard sofa", 250000)

	order := gin.H{
		"billingDetails":  gin.H{"firstName": "Ana", "lastName": "Roy", "phone": "9999999999", "email": "ana@example.com"},
		"shippingAddress": gin.H{"streetAddress": "1 MG Road", "city": "Pune", "province": "MH", "postalCode": "411001"},
		"orderItems":      []gin.H{{"product": sofa.ID.Hex(), "quantity": 1}},
		"paymentMethod":   models.PaymentMethodStripe,
		"subtotal":        250000,
		"totalAmount":     250000,
	}
	w := s.do(t, http.MethodPost, "/api/orders", token, order)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Order](t, w)
	orderID := created.ID.Hex()

	w = s.do(t, http.MethodGet, "/api/orders/"+orderID, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, "/api/payments/create-payment-intent", token, gin.H{"amount": 250000, "orderId": orderID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	intent := decode[struct {
		PaymentIntent models.PaymentIntent `json:"paymentIntent"`
		PaymentID     string               `json:"paymentId"`
	}](t, w)
	assert.Equal(t, int64(25000000), intent.PaymentIntent.Amount)

	w = s.do(t, http.MethodPost, "/api/payments/confirm-payment", token, gin.H{"paymentIntentId": intent.PaymentIntent.ID, "orderId": orderID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"success":true`)

	paid := decode[models.OrderView](t, s.do(t, http.MethodGet, "/api/orders/"+orderID, token, nil))
	assert.Equal(t, models.OrderPaymentPaid, paid.PaymentStatus)

	w = s.do(t, http.MethodGet, "/api/payments/status/"+intent.PaymentID, token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/payments/config", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "publishableKey")
}

func TestAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	token, _ := s.register(t, "Ana", "ana@example.com")
	adminToken, adminID := s.register(t, "Root", "root@example.com")
	require.NoError(t, s.repos.Users.UpdateRole(context.Background(), mustHex(t, adminID), models.RoleAdmin))

	product := gin.H{"name": "Lolito", "price": 700000}
	w := s.do(t, http.MethodPost, "/api/products", token, product)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Le rôle est relu en base: le token émis avant la promotion suffit.
	w = s.do(t, http.MethodPost, "/api/products/add", adminToken, product)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.Product](t, w)
	assert.Equal(t, models.DefaultCategory, created.Category)

	list := decode[[]models.Product](t, s.do(t, http.MethodGet, "/api/products?search=lolito", "", nil))
	assert.Len(t, list, 1)

	w = s.do(t, http.MethodDelete, "/api/products/"+created.ID.Hex(), adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodGet, "/api/products/"+created.ID.Hex(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/admin/audit", adminToken, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAdminAssignRole(t *testing.T) {
	s := newTestServer(t)
	token, userID := s.register(t, "Ana", "ana@example.com")
	adminToken, adminID := s.register(t, "Root", "root@example.com")
	require.NoError(t, s.repos.Users.UpdateRole(context.Background(), mustHex(t, adminID), models.RoleAdmin))

	w := s.do(t, http.MethodPut, "/api/admin/users/"+userID+"/role", token, gin.H{"role": models.RoleAdmin})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPut, "/api/admin/users/"+userID+"/role", adminToken, gin.H{"role": "owner"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/api/admin/users/"+userID+"/role", adminToken, gin.H{"role": models.RoleAdmin})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/products", token, gin.H{"name": "Muggo", "price": 150000})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func mustHex(t *testing.T, hex string) primitive.ObjectID {
	t.Helper()
	id, err := primitive.ObjectIDFromHex(hex)
	require.NoError(t, err)
	return id
}
