// Package client appelle l'API REST Furniro pour le storefront.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"furniro_back_end/internal/models"
)

const DefaultTimeout = 15 * time.Second

// APIError est une réponse non 2xx; Message reprend le champ "error" du corps.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// send exécute la requête et renvoie le code et le corps, sans interpréter le statut.
func (c *Client) send(ctx context.Context, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, data, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	status, data, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return decodeError(status, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("réponse %s %s illisible: %w", method, path, err)
	}
	return nil
}

func decodeError(status int, data []byte) error {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(data, &body)
	msg := body.Error
	if msg == "" {
		msg = body.Message
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &APIError{Status: status, Message: msg}
}

// --- Auth ---

type AuthResponse struct {
	Message string      `json:"message"`
	User    models.User `json:"user"`
	Token   string      `json:"token"`
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/register",
		map[string]string{"name": name, "email": email, "password": password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login",
		map[string]string{"email": email, "password": password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var out struct {
		User models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// --- Produits ---

func (c *Client) Products(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	q := url.Values{}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	if filter.Search != "" {
		q.Set("search", filter.Search)
	}
	path := "/api/products"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []models.Product
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Product(ctx context.Context, id string) (*models.Product, error) {
	var out models.Product
	if err := c.do(ctx, http.MethodGet, "/api/products/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Panier ---

type CartItem struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type cartResponse struct {
	Cart models.CartView `json:"cart"`
}

func (c *Client) Cart(ctx context.Context) (*models.CartView, error) {
	var out cartResponse
	if err := c.do(ctx, http.MethodGet, "/api/cart", nil, &out); err != nil {
		return nil, err
	}
	return &out.Cart, nil
}

// MergeCart pousse le panier local; le serveur complète chaque quantité sans la dépasser.
func (c *Client) MergeCart(ctx context.Context, items []CartItem) (*models.CartView, error) {
	var out cartResponse
	if err := c.do(ctx, http.MethodPost, "/api/cart", map[string]any{"items": items}, &out); err != nil {
		return nil, err
	}
	return &out.Cart, nil
}

func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) error {
	return c.do(ctx, http.MethodPost, "/api/cart/add", CartItem{ProductID: productID, Quantity: quantity}, nil)
}

func (c *Client) SetCartQuantity(ctx context.Context, productID string, quantity int) error {
	return c.do(ctx, http.MethodPut, "/api/cart/"+url.PathEscape(productID), map[string]int{"quantity": quantity}, nil)
}

func (c *Client) RemoveFromCart(ctx context.Context, productID string) error {
	return c.do(ctx, http.MethodDelete, "/api/cart/remove/"+url.PathEscape(productID), nil, nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/cart/clear", nil, nil)
}

// --- Favoris ---

type favoritesResponse struct {
	Products []models.Product `json:"products"`
}

func (c *Client) Favorites(ctx context.Context) ([]models.Product, error) {
	var out favoritesResponse
	if err := c.do(ctx, http.MethodGet, "/api/favorites", nil, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (c *Client) MergeFavorites(ctx context.Context, productIDs []string) ([]models.Product, error) {
	var out favoritesResponse
	if err := c.do(ctx, http.MethodPost, "/api/favorites", map[string]any{"productIds": productIDs}, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (c *Client) AddFavorite(ctx context.Context, productID string) error {
	return c.do(ctx, http.MethodPost, "/api/favorites/add", map[string]string{"productId": productID}, nil)
}

func (c *Client) RemoveFavorite(ctx context.Context, productID string) error {
	return c.do(ctx, http.MethodDelete, "/api/favorites/remove/"+url.PathEscape(productID), nil, nil)
}

func (c *Client) ClearFavorites(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/favorites/clear", nil, nil)
}

// --- Commandes ---

func (c *Client) CreateOrder(ctx context.Context, in models.OrderInput) (*models.Order, error) {
	var out models.Order
	if err := c.do(ctx, http.MethodPost, "/api/orders", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Orders(ctx context.Context) ([]models.OrderView, error) {
	var out []models.OrderView
	if err := c.do(ctx, http.MethodGet, "/api/orders", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// --- Paiements ---

type IntentResponse struct {
	PaymentIntent models.PaymentIntent `json:"paymentIntent"`
	PaymentID     string               `json:"paymentId"`
}

type ConfirmResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	PaymentStatus string `json:"paymentStatus"`
	TransactionID string `json:"transactionId"`
}

func (c *Client) CreatePaymentIntent(ctx context.Context, amount float64, orderID, currency string) (*IntentResponse, error) {
	body := map[string]any{"amount": amount, "orderId": orderID}
	if currency != "" {
		body["currency"] = currency
	}
	var out IntentResponse
	if err := c.do(ctx, http.MethodPost, "/api/payments/create-payment-intent", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmPayment renvoie le résultat même quand le paiement est refusé (400 avec success=false).
func (c *Client) ConfirmPayment(ctx context.Context, intentID, orderID string) (*ConfirmResponse, error) {
	status, data, err := c.send(ctx, http.MethodPost, "/api/payments/confirm-payment",
		map[string]string{"paymentIntentId": intentID, "orderId": orderID})
	if err != nil {
		return nil, err
	}

	var out ConfirmResponse
	if status == http.StatusOK || status == http.StatusBadRequest {
		if err := json.Unmarshal(data, &out); err == nil && out.PaymentStatus != "" {
			return &out, nil
		}
	}
	return nil, decodeError(status, data)
}
