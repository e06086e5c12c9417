package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"furniro_back_end/internal/apperr"
	"furniro_back_end/internal/audit"
	"furniro_back_end/internal/events"
	"furniro_back_end/internal/invoice"
	"furniro_back_end/internal/mail"
	"furniro_back_end/internal/models"
	"furniro_back_end/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Nombre de relectures quand le statut change pendant une mise à jour.
const statusUpdateRetries = 3

type OrderMetrics interface {
	OrderCreated()
}

type OrderDeps struct {
	Orders   repository.OrderRepository
	Products repository.ProductRepository
	Events   events.Publisher
	Mailer   mail.Mailer
	Invoices *invoice.Renderer
	Metrics  OrderMetrics
	Audit    audit.Logger
}

type OrderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	events   events.Publisher
	mailer   mail.Mailer
	invoices *invoice.Renderer
	metrics  OrderMetrics
	audit    audit.Logger
	now      func() time.Time
	wg       sync.WaitGroup
}

func NewOrderService(d OrderDeps) *OrderService {
	s := &OrderService{
		orders:   d.Orders,
		products: d.Products,
		events:   d.Events,
		mailer:   d.Mailer,
		invoices: d.Invoices,
		metrics:  d.Metrics,
		audit:    d.Audit,
		now:      time.Now,
	}
	if s.events == nil {
		s.events = events.NopPublisher{}
	}
	if s.mailer == nil {
		s.mailer = mail.LogMailer{}
	}
	if s.invoices == nil {
		s.invoices = invoice.NewRenderer("", "", false)
	}
	return s
}

// Create valide la commande dans un ordre fixe; la première règle violée
// détermine le message. Le stock et le panier ne sont pas modifiés.
func (s *OrderService) Create(ctx context.Context, userID string, in models.OrderInput) (*models.Order, error) {
	uid, err := userObjectID(userID)
	if err != nil {
		return nil, err
	}
	if err := validateOrderInput(in); err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(in.OrderItems))
	ids := make([]primitive.ObjectID, 0, len(in.OrderItems))
	for _, it := range in.OrderItems {
		pid, err := primitive.ObjectIDFromHex(it.Product)
		if err != nil {
			return nil, apperr.NotFound("Product not found")
		}
		items = append(items, models.OrderItem{Product: pid, Quantity: it.Quantity})
		ids = append(ids, pid)
	}
	known, err := productsByID(ctx, s.products, ids)
	if err != nil {
		return nil, apperr.Server(err)
	}
	for _, id := range ids {
		if _, ok := known[id]; !ok {
			return nil, apperr.NotFound("Product not found")
		}
	}

	now := s.now()
	shipping := *in.ShippingAddress
	if strings.TrimSpace(shipping.Country) == "" {
		shipping.Country = models.DefaultCountry
	}
	order := &models.Order{
		User:             uid,
		BillingDetails:   *in.BillingDetails,
		ShippingAddress:  shipping,
		OrderItems:       items,
		PaymentMethod:    in.PaymentMethod,
		PaymentStatus:    models.OrderPaymentPending,
		Subtotal:         in.Subtotal,
		TotalAmount:      in.TotalAmount,
		AdditionalInfo:   in.AdditionalInfo,
		OrderStatus:      models.StatusProcessing,
		DeliveryTracking: models.NewDeliveryTracking(now),
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err = s.orders.Create(ctx, order)
	audit.Record(ctx, s.audit, models.ActionOrderCreate, models.ResourceOrder, order.ID.Hex(), map[string]any{
		"totalAmount":   order.TotalAmount,
		"paymentMethod": order.PaymentMethod,
	}, err)
	if err != nil {
		return nil, apperr.Server(err)
	}
	log.Printf("📝 Commande %s créée pour %s (%d articles)", order.ID.Hex(), userID, len(items))

	if s.metrics != nil {
		s.metrics.OrderCreated()
	}
	s.events.Publish(ctx, events.Event{
		Type:       events.OrderCreated,
		OrderID:    order.ID.Hex(),
		UserID:     userID,
		Data:       map[string]any{"totalAmount": order.TotalAmount, "paymentMethod": order.PaymentMethod},
		OccurredAt: now,
	})
	s.sendConfirmation(models.NewOrderView(*order, known))
	return order, nil
}

func validateOrderInput(in models.OrderInput) error {
	if in.BillingDetails == nil || in.ShippingAddress == nil || in.OrderItems == nil ||
		in.PaymentMethod == "" || in.Subtotal == 0 || in.TotalAmount == 0 {
		return apperr.Validation("Missing required fields")
	}
	b := in.BillingDetails
	if blank(b.FirstName) || blank(b.LastName) || blank(b.Phone) || blank(b.Email) {
		return apperr.Validation("Billing details are incomplete")
	}
	a := in.ShippingAddress
	if blank(a.StreetAddress) || blank(a.City) || blank(a.Province) || blank(a.PostalCode) {
		return apperr.Validation("Shipping address is incomplete")
	}
	if len(in.OrderItems) == 0 {
		return apperr.Validation("Order items cannot be empty")
	}
	for _, it := range in.OrderItems {
		if it.Quantity < 1 {
			return apperr.Validation("Order item quantity must be at least 1")
		}
	}
	if !models.IsValidPaymentMethod(in.PaymentMethod) {
		return apperr.Validation("Invalid payment method")
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// sendConfirmation génère la facture puis envoie l'e-mail hors de la requête.
func (s *OrderService) sendConfirmation(view models.OrderView) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		s.mailer.SendOrderConfirmation(ctx, view, s.invoices.PDF(ctx, view))
	}()
}

// List renvoie les commandes de l'utilisateur, les plus récentes d'abord.
func (s *OrderService) List(ctx context.Context, userID string) ([]models.OrderView, error) {
	uid, err := userObjectID(userID)
	if err != nil {
		return nil, err
	}
	orders, err := s.orders.ListByUser(ctx, uid)
	if err != nil {
		return nil, apperr.Server(err)
	}

	seen := make(map[primitive.ObjectID]bool)
	var ids []primitive.ObjectID
	for _, o := range orders {
		for _, it := range o.OrderItems {
			if !seen[it.Product] {
				seen[it.Product] = true
				ids = append(ids, it.Product)
			}
		}
	}
	products, err := productsByID(ctx, s.products, ids)
	if err != nil {
		return nil, apperr.Server(err)
	}

	views := make([]models.OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, models.NewOrderView(o, products))
	}
	return views, nil
}

// Get renvoie la commande si elle appartient à l'utilisateur ou s'il est admin.
// Une commande d'un autre utilisateur est signalée comme introuvable.
func (s *OrderService) Get(ctx context.Context, userID, role, orderID string) (*models.OrderView, error) {
	uid, err := userObjectID(userID)
	if err != nil {
		return nil, err
	}
	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.User != uid && role != models.RoleAdmin {
		return nil, apperr.NotFound("Order not found")
	}

	ids := make([]primitive.ObjectID, 0, len(order.OrderItems))
	for _, it := range order.OrderItems {
		ids = append(ids, it.Product)
	}
	products, err := productsByID(ctx, s.products, ids)
	if err != nil {
		return nil, apperr.Server(err)
	}
	view := models.NewOrderView(*order, products)
	return &view, nil
}

// UpdateStatus applique la transition et complète le suivi de livraison.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID, target string) (*models.Order, error) {
	target = strings.TrimSpace(target)
	if !models.IsValidOrderStatus(target) {
		return nil, apperr.Validation("Invalid order status")
	}

	for attempt := 0; attempt < statusUpdateRetries; attempt++ {
		order, err := s.find(ctx, orderID)
		if err != nil {
			return nil, err
		}
		previous := order.OrderStatus
		if err := order.ApplyStatus(target, s.now()); err != nil {
			return nil, statusError(err, previous, target)
		}
		if previous == order.OrderStatus {
			return order, nil
		}

		err = s.orders.UpdateStatus(ctx, order, previous)
		if errors.Is(err, repository.ErrConflict) {
			continue
		}
		audit.Record(ctx, s.audit, models.ActionOrderStatus, models.ResourceOrder, orderID,
			map[string]string{"from": previous, "to": target}, err)
		if err != nil {
			return nil, apperr.Server(err)
		}

		log.Printf("📦 Commande %s: %s → %s", orderID, previous, target)
		s.events.Publish(ctx, events.Event{
			Type:       events.OrderStatusUpdated,
			OrderID:    orderID,
			UserID:     order.User.Hex(),
			Data:       map[string]string{"from": previous, "to": target},
			OccurredAt: order.UpdatedAt,
		})
		s.mailer.SendOrderStatus(ctx, *order)
		return order, nil
	}
	return nil, apperr.Server(fmt.Errorf("commande %s: %w", orderID, repository.ErrConflict))
}

func statusError(err error, from, to string) error {
	switch {
	case errors.Is(err, models.ErrInvalidStatus):
		return apperr.Validation("Invalid order status")
	case errors.Is(err, models.ErrTerminalStatus):
		return apperr.Validation(fmt.Sprintf("Order is already %s", from))
	case errors.Is(err, models.ErrBackwardTransition):
		return apperr.Validation(fmt.Sprintf("Cannot change order status from %s to %s", from, to))
	}
	return apperr.Server(err)
}

// Invoice produit la facture de la commande (PDF, ou HTML sans navigateur).
func (s *OrderService) Invoice(ctx context.Context, userID, role, orderID string) (*invoice.Document, error) {
	view, err := s.Get(ctx, userID, role, orderID)
	if err != nil {
		return nil, err
	}
	doc, err := s.invoices.Render(ctx, *view)
	if err != nil {
		return nil, apperr.Server(err)
	}
	return doc, nil
}

// Wait attend la fin des envois de confirmation en cours.
func (s *OrderService) Wait() {
	s.wg.Wait()
}

func (s *OrderService) find(ctx context.Context, orderID string) (*models.Order, error) {
	id, err := parseID(orderID, "Order ID is required", "Invalid order ID format")
	if err != nil {
		return nil, err
	}
	order, err := s.orders.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("Order not found")
	}
	if err != nil {
		return nil, apperr.Server(err)
	}
	return order, nil
}
