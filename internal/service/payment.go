package service

import (
	"context"
	"errors"
	"log"
	"math"
	"strings"
	"time"

	"furniro_back_end/internal/apperr"
	"furniro_back_end/internal/audit"
	"furniro_back_end/internal/events"
	"furniro_back_end/internal/gateway"
	"furniro_back_end/internal/models"
	"furniro_back_end/internal/repository"
)

const DefaultCurrency = "inr"

type PaymentMetrics interface {
	PaymentResolved(status string)
}

type CreateIntentInput struct {
	Amount   float64 `json:"amount"`
	OrderID  string  `json:"orderId"`
	Currency string  `json:"currency"`
}

type IntentResult struct {
	PaymentIntent models.PaymentIntent `json:"paymentIntent"`
	PaymentID     string               `json:"paymentId"`
}

type ConfirmInput struct {
	PaymentIntentID string `json:"paymentIntentId"`
	OrderID         string `json:"orderId"`
}

type ConfirmResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	PaymentStatus string `json:"paymentStatus"`
	TransactionID string `json:"transactionId,omitempty"`
}

type PaymentDeps struct {
	Payments repository.PaymentRepository
	Orders   repository.OrderRepository
	Gateway  gateway.Gateway
	Events   events.Publisher
	Metrics  PaymentMetrics
	Audit    audit.Logger
}

type PaymentService struct {
	payments repository.PaymentRepository
	orders   repository.OrderRepository
	gateway  gateway.Gateway
	events   events.Publisher
	metrics  PaymentMetrics
	audit    audit.Logger
}

func NewPaymentService(d PaymentDeps) *PaymentService {
	s := &PaymentService{
		payments: d.Payments,
		orders:   d.Orders,
		gateway:  d.Gateway,
		events:   d.Events,
		metrics:  d.Metrics,
		audit:    d.Audit,
	}
	if s.gateway == nil {
		s.gateway = gateway.NewSimulated(gateway.DefaultSuccessRate, "", nil)
	}
	if s.events == nil {
		s.events = events.NopPublisher{}
	}
	return s
}

// CreateIntent ouvre une tentative de paiement Pending pour une commande de l'utilisateur.
func (s *PaymentService) CreateIntent(ctx context.Context, userID string, in CreateIntentInput) (*IntentResult, error) {
	uid, err := userObjectID(userID)
	if err != nil {
		return nil, err
	}
	orderID, err := parseID(in.OrderID, "Order ID is required", "Invalid order ID format")
	if err != nil {
		return nil, err
	}
	order, err := s.orders.FindByID(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && order.User != uid) {
		return nil, apperr.NotFound("Order not found")
	}
	if err != nil {
		return nil, apperr.Server(err)
	}
	if in.Amount <= 0 || math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return nil, apperr.Validation("Amount must be greater than 0")
	}
	if order.PaymentStatus == models.OrderPaymentPaid {
		return nil, apperr.Validation("Order is already paid")
	}

	currency := strings.ToLower(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	intent, err := s.gateway.CreateIntent(ctx, int64(math.Round(in.Amount*100)), currency, map[string]string{
		"orderId": in.OrderID,
		"userId":  userID,
	})
	if err != nil {
		return nil, apperr.Server(err)
	}

	payment := &models.Payment{
		User:          uid,
		Order:         orderID,
		PaymentMethod: models.PaymentMethodCard,
		TransactionID: intent.ID,
		Amount:        int64(math.Round(in.Amount)),
		Currency:      currency,
		PaymentStatus: models.PaymentPending,
	}
	err = s.payments.Create(ctx, payment)
	audit.Record(ctx, s.audit, models.ActionPaymentIntent, models.ResourcePayment, payment.ID.Hex(),
		map[string]any{"orderId": in.OrderID, "amount": in.Amount, "transactionId": intent.ID}, err)
	if err != nil {
		return nil, apperr.Server(err)
	}
	log.Printf("💳 Intention %s créée pour la commande %s", intent.ID, in.OrderID)

	return &IntentResult{
		PaymentIntent: models.PaymentIntent{
			ID:             intent.ID,
			ClientSecret:   intent.ClientSecret,
			Amount:         intent.Amount,
			Currency:       intent.Currency,
			Status:         intent.Status,
			Metadata:       intent.Metadata,
			PublishableKey: s.gateway.PublishableKey(),
		},
		PaymentID: payment.ID.Hex(),
	}, nil
}

// Confirm résout un paiement Pending; un paiement déjà résolu renvoie son
// résultat enregistré sans nouveau tirage.
func (s *PaymentService) Confirm(ctx context.Context, userID string, in ConfirmInput) (*ConfirmResult, error) {
	uid, err := userObjectID(userID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.PaymentIntentID) == "" {
		return nil, apperr.Validation("Payment intent ID is required")
	}

	payment, err := s.payments.FindByTransaction(ctx, uid, in.PaymentIntentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("Payment not found")
	}
	if err != nil {
		return nil, apperr.Server(err)
	}
	if in.OrderID != "" && in.OrderID != payment.Order.Hex() {
		return nil, apperr.Validation("Payment does not belong to this order")
	}
	if payment.PaymentStatus != models.PaymentPending {
		// Une confirmation précédente a pu échouer après la résolution du paiement.
		if payment.PaymentStatus == models.PaymentSuccess {
			if err := s.markOrderPaid(ctx, payment); err != nil {
				return nil, apperr.Server(err)
			}
		}
		return outcome(payment), nil
	}

	order, err := s.orders.FindByID(ctx, payment.Order)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Server(err)
	}
	if err == nil && order.PaymentStatus == models.OrderPaymentPaid && order.TransactionID != payment.TransactionID {
		// Une autre intention a déjà réglé la commande: celle-ci ne sera jamais débitée.
		if err := s.payments.Resolve(ctx, payment.ID, models.PaymentFailed); err != nil && !errors.Is(err, repository.ErrConflict) {
			return nil, apperr.Server(err)
		}
		log.Printf("⚠️ Intention %s abandonnée, commande %s déjà payée", payment.TransactionID, payment.Order.Hex())
		return nil, apperr.Validation("Order is already paid")
	}

	ok, err := s.gateway.Confirm(ctx, payment.TransactionID)
	if err != nil {
		return nil, apperr.Server(err)
	}
	status := models.PaymentFailed
	if ok {
		status = models.PaymentSuccess
	}

	err = s.payments.Resolve(ctx, payment.ID, status)
	if errors.Is(err, repository.ErrConflict) {
		// Une confirmation concurrente a gagné; on renvoie son résultat.
		current, ferr := s.payments.FindByID(ctx, payment.ID)
		if ferr != nil {
			return nil, apperr.Server(ferr)
		}
		return outcome(current), nil
	}
	if err != nil {
		return nil, apperr.Server(err)
	}
	payment.PaymentStatus = status

	evType := events.PaymentFailed
	if ok {
		evType = events.PaymentSucceeded
		if err := s.markOrderPaid(ctx, payment); err != nil {
			return nil, apperr.Server(err)
		}
		log.Printf("✅ Paiement %s accepté, commande %s payée", payment.TransactionID, payment.Order.Hex())
	} else {
		log.Printf("❌ Paiement %s refusé pour la commande %s", payment.TransactionID, payment.Order.Hex())
	}

	audit.Record(ctx, s.audit, models.ActionPaymentConfirm, models.ResourcePayment, payment.ID.Hex(),
		map[string]string{"status": status, "transactionId": payment.TransactionID}, nil)
	if s.metrics != nil {
		s.metrics.PaymentResolved(status)
	}
	s.events.Publish(ctx, events.Event{
		Type:       evType,
		OrderID:    payment.Order.Hex(),
		UserID:     userID,
		Data:       map[string]string{"paymentId": payment.ID.Hex(), "transactionId": payment.TransactionID},
		OccurredAt: time.Now(),
	})
	return outcome(payment), nil
}

// markOrderPaid est rejouable; la commande garde la transaction qui l'a réglée en premier.
func (s *PaymentService) markOrderPaid(ctx context.Context, payment *models.Payment) error {
	err := s.orders.MarkPaid(ctx, payment.Order, payment.TransactionID)
	if errors.Is(err, repository.ErrConflict) {
		log.Printf("⚠️ Commande %s déjà payée par une autre transaction, %s ignorée", payment.Order.Hex(), payment.TransactionID)
		return nil
	}
	return err
}

func outcome(p *models.Payment) *ConfirmResult {
	if p.PaymentStatus == models.PaymentSuccess {
		return &ConfirmResult{
			Success:       true,
			Message:       "Payment confirmed successfully",
			PaymentStatus: models.PaymentSuccess,
			TransactionID: p.TransactionID,
		}
	}
	return &ConfirmResult{
		Success:       false,
		Message:       "Payment failed. Please try again.",
		PaymentStatus: models.PaymentFailed,
	}
}

// Status renvoie le paiement de l'utilisateur avec sa commande.
func (s *PaymentService) Status(ctx context.Context, userID, paymentID string) (*models.PaymentView, error) {
	uid, err := userObjectID(userID)
	if err != nil {
		return nil, err
	}
	id, err := parseID(paymentID, "Payment ID is required", "Invalid payment ID format")
	if err != nil {
		return nil, err
	}
	payment, err := s.payments.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && payment.User != uid) {
		return nil, apperr.NotFound("Payment not found")
	}
	if err != nil {
		return nil, apperr.Server(err)
	}

	view := &models.PaymentView{Payment: *payment}
	order, err := s.orders.FindByID(ctx, payment.Order)
	switch {
	case err == nil:
		view.Order = order
	case !errors.Is(err, repository.ErrNotFound):
		return nil, apperr.Server(err)
	}
	return view, nil
}

func (s *PaymentService) PublishableKey() string {
	return s.gateway.PublishableKey()
}
