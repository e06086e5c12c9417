package service

import (
	"context"
	"errors"
	"math/rand"
	"regexp"
	"sync/atomic"
	"testing"

	"furniro_back_end/internal/apperr"
	"furniro_back_end/internal/events"
	"furniro_back_end/internal/gateway"
	"furniro_back_end/internal/models"
	"furniro_back_end/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fixedGateway confirme toujours avec le même résultat.
type fixedGateway struct {
	*gateway.Simulated
	ok    bool
	calls atomic.Int32
}

func (g *fixedGateway) Confirm(context.Context, string) (bool, error) {
	g.calls.Add(1)
	return g.ok, nil
}

type paymentFixture struct {
	*orderFixture
	payments *PaymentService
	metrics  *counter
}

func newPaymentFixture(t *testing.T, gw gateway.Gateway) *paymentFixture {
	of := newOrderFixture(t)
	pf := &paymentFixture{orderFixture: of, metrics: &counter{}}
	pf.payments = NewPaymentService(PaymentDeps{
		Payments: of.repos.Payments,
		Orders:   of.repos.Orders,
		Gateway:  gw,
		Events:   of.events,
		Metrics:  pf.metrics,
	})
	return pf
}

func (f *paymentFixture) order(t *testing.T) *models.Order {
	in := f.input()
	in.PaymentMethod = models.PaymentMethodUPI
	order, err := f.orders.Create(context.Background(), f.userID, in)
	require.NoError(t, err)
	f.orders.Wait()
	return order
}

func TestCreateIntent(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t, nil)
	order := f.order(t)

	res, err := f.payments.CreateIntent(ctx, f.userID, CreateIntentInput{Amount: 5000.5, OrderID: order.ID.Hex()})
	require.NoError(t, err)

	intent := res.PaymentIntent
	assert.Regexp(t, regexp.MustCompile(`^pi_dummy_\d+_[0-9a-z]{9}$`), intent.ID)
	assert.Regexp(t, regexp.MustCompile(`^`+intent.ID+`_secret_[0-9a-f]+$`), intent.ClientSecret)
	assert.Equal(t, int64(500050), intent.Amount)
	assert.Equal(t, DefaultCurrency, intent.Currency)
	assert.Equal(t, gateway.StatusRequiresPaymentMethod, intent.Status)
	assert.Equal(t, map[string]string{"orderId": order.ID.Hex(), "userId": f.userID}, intent.Metadata)
	assert.Equal(t, gateway.DefaultPublishableKey, intent.PublishableKey)

	payment, err := f.repos.Payments.FindByID(ctx, mustOID(t, res.PaymentID))
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, payment.PaymentStatus)
	assert.Equal(t, models.PaymentMethodCard, payment.PaymentMethod)
	assert.Equal(t, intent.ID, payment.TransactionID)
}

func TestCreateIntent_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t, nil)
	order := f.order(t)

	_, err := f.payments.CreateIntent(ctx, newUserID(), CreateIntentInput{Amount: 10, OrderID: order.ID.Hex()})
	requireAppErr(t, err, apperr.KindNotFound, "Order not found")
	_, err = f.payments.CreateIntent(ctx, f.userID, CreateIntentInput{Amount: 10, OrderID: newUserID()})
	requireAppErr(t, err, apperr.KindNotFound, "Order not found")
	_, err = f.payments.CreateIntent(ctx, f.userID, CreateIntentInput{Amount: 0, OrderID: order.ID.Hex()})
	requireAppErr(t, err, apperr.KindValidation, "Amount must be greater than 0")

	require.NoError(t, f.repos.Orders.MarkPaid(ctx, order.ID, "pi_prev"))
	_, err = f.payments.CreateIntent(ctx, f.userID, CreateIntentInput{Amount: 10, OrderID: order.ID.Hex()})
	requireAppErr(t, err, apperr.KindValidation, "Order is already paid")
}

func TestConfirm_SuccessMarksOrderPaid(t *testing.T) {
	ctx := context.Background()
	gw := &fixedGateway{Simulated: gateway.NewSimulated(1, "", nil), ok: true}
	f := newPaymentFixture(t, gw)
	order := f.order(t)

	intent, err := f.payments.CreateIntent(ctx, f.userID, CreateIntentInput{Amount: 5000, OrderID: order.ID.Hex()})
	require.NoError(t, err)

	res, err := f.payments.Confirm(ctx, f.userID, ConfirmInput{PaymentIntentID: intent.PaymentIntent.ID, OrderID: order.ID.Hex()})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Payment confirmed successfully", res.Message)
	assert.Equal(t, models.PaymentSuccess, res.PaymentStatus)
	assert.Equal(t, intent.PaymentIntent.ID, res.TransactionID)

	stored, _ := f.repos.Orders.FindByID(ctx, order.ID)
	assert.Equal(t, models.OrderPaymentPaid, stored.PaymentStatus)
	assert.Equal(t, intent.PaymentIntent.ID, stored.TransactionID)
	assert.Contains(t, f.events.types(), events.PaymentSucceeded)
	assert.Equal(t, 1, f.metrics.paid[models.PaymentSuccess])

	// Une seconde confirmation renvoie le résultat enregistré sans nouveau tirage.
	gw.ok = false
	again, err := f.payments.Confirm(ctx, f.userID, ConfirmInput{PaymentIntentID: intent.PaymentIntent.ID})
	require.NoError(t, err)
	assert.True(t, again.Success)
	assert.Equal(t, int32(1), gw.calls.Load())
}

// flakyOrders fait échouer les premiers MarkPaid.
type flakyOrders struct {
	repository.OrderRepository
	failures atomic.Int32
}

func (r *flakyOrders) MarkPaid(ctx context.Context, id primitive.ObjectID, transactionID string) error {
	if r.failures.Add(-1) >= 0 {
		return errors.New("socket closed")
	}
	return r.OrderRepository.MarkPaid(ctx, id, transactionID)
}

func TestConfirm_RetryMarksOrderPaidAfterWriteFailure(t *testing.T) {
	ctx := context.Background()
	gw := &fixedGateway{Simulated: gateway.NewSimulated(1, "", nil), ok: true}
	f := newPaymentFixture(t, gw)
	orders := &flakyOrders{OrderRepository: f.repos.Orders}
	orders.failures.Store(1)
	f.payments.orders = orders
	order := f.order(t)

	intent, err := f.payments.CreateIntent(ctx, f.userID, CreateIntentInput{Amount: 5000, OrderID: order.ID.Hex()})
	require.NoError(t, err)

	_, err = f.payments.Confirm(ctx, f.userID, ConfirmInput{PaymentIntentID: intent.PaymentIntent.ID})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindServer))

	res, err := f.payments.Confirm(ctx, f.userID, ConfirmInput{PaymentIntentID: intent.PaymentIntent.ID})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, int32(1), gw.calls.Load())

	stored, err := f.repos.Orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPaymentPaid, stored.PaymentStatus)
	assert.Equal(t, intent.PaymentIntent.ID, stored.TransactionID)
}

func TestConfirm_SecondIntentAfterOrderPaid(t *testing.T) {
	ctx := context.Background()
	gw := &fixedGateway{Simulated: gateway.NewSimulated(1, "", nil), ok: true}
	f := newPaymentFixture(t, gw)
	order := f.order(t)

	first, err := f.payments.CreateIntent(ctx, f.userID, CreateIntentInput{Amount: 5000, OrderID: order.ID.Hex()})
	require.NoError(t, err)
	second, err := f.payments.CreateIntent(ctx, f.userID, CreateIntentInput{Amount: 5000, OrderID: order.ID.Hex()})
	require.NoError(t, err)

	res, err := f.payments.Confirm(ctx, f.userID, ConfirmInput{PaymentIntentID: first.PaymentIntent.ID})
	require.NoError(t, err)
	require.True(t, res.Success)

	_, err = f.payments.Confirm(ctx, f.userID, ConfirmInput{PaymentIntentID: second.PaymentIntent.ID})
	requireAppErr(t, err, apperr.KindValidation, "Order is already paid")
	assert.Equal(t, int32(1), gw.calls.Load())

	stored, err := f.repos.Orders.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, first.PaymentIntent.ID, stored.TransactionID)

	abandoned, err := f.repos.Payments.FindByID(ctx, mustOID(t, second.PaymentID))
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, abandoned.PaymentStatus)
}

func TestConfirm_FailureLeavesOrderPending(t *testing.T) {
	ctx := context.Background()
	gw := &fixedGateway{Simulated: gateway.NewSimulated(0, "", nil), ok: false}
	f := newPaymentFixture(t, gw)
	order := f.order(t)

	intent, err := f.payments.CreateIntent(ctx, f.userID, CreateIntentInput{Amount: 5000, OrderID: order.ID.Hex()})
	require.NoError(t, err)

	res, err := f.payments.Confirm(ctx, f.userID, ConfirmInput{PaymentIntentID: intent.PaymentIntent.ID, OrderID: order.ID.Hex()})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Payment failed. Please try again.", res.Message)
	assert.Equal(t, models.PaymentFailed, res.PaymentStatus)

	stored, _ := f.repos.Orders.FindByID(ctx, order.ID)
	assert.Equal(t, models.OrderPaymentPending, stored.PaymentStatus)
	assert.Empty(t, stored.TransactionID)

	// Un nouvel essai crée un nouveau paiement pour la même commande.
	gw.ok = true
	retry, err := f.payments.CreateIntent(ctx, f.userID, CreateIntentInput{Amount: 5000, OrderID: order.ID.Hex()})
	require.NoError(t, err)
	res, err = f.payments.Confirm(ctx, f.userID, ConfirmInput{PaymentIntentID: retry.PaymentIntent.ID})
	require.NoError(t, err)
	assert.True(t, res.Success)
}

func TestConfirm_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t, nil)
	order := f.order(t)
	intent, err := f.payments.CreateIntent(ctx, f.userID, CreateIntentInput{Amount: 10, OrderID: order.ID.Hex()})
	require.NoError(t, err)

	_, err = f.payments.Confirm(ctx, f.userID, ConfirmInput{})
	requireAppErr(t, err, apperr.KindValidation, "Payment intent ID is required")
	_, err = f.payments.Confirm(ctx, newUserID(), ConfirmInput{PaymentIntentID: intent.PaymentIntent.ID})
	requireAppErr(t, err, apperr.KindNotFound, "Payment not found")
	_, err = f.payments.Confirm(ctx, f.userID, ConfirmInput{PaymentIntentID: intent.PaymentIntent.ID, OrderID: newUserID()})
	requireAppErr(t, err, apperr.KindValidation, "Payment does not belong to this order")
}

func TestConfirm_ConvergesToSuccessRate(t *testing.T) {
	ctx := context.Background()
	gw := gateway.NewSimulated(gateway.DefaultSuccessRate, "", rand.NewSource(7))
	f := newPaymentFixture(t, gw)

	const runs = 1000
	successes := 0
	for i := 0; i < runs; i++ {
		order := f.order(t)
		intent, err := f.payments.CreateIntent(ctx, f.userID, CreateIntentInput{Amount: 100, OrderID: order.ID.Hex()})
		require.NoError(t, err)
		res, err := f.payments.Confirm(ctx, f.userID, ConfirmInput{PaymentIntentID: intent.PaymentIntent.ID})
		require.NoError(t, err)

		stored, _ := f.repos.Orders.FindByID(ctx, order.ID)
		if res.Success {
			successes++
			assert.Equal(t, models.OrderPaymentPaid, stored.PaymentStatus)
		} else {
			assert.Equal(t, models.OrderPaymentPending, stored.PaymentStatus)
		}
	}
	assert.InDelta(t, 900, successes, 40)
	assert.Equal(t, successes, f.metrics.paid[models.PaymentSuccess])
}

func TestPaymentStatus(t *testing.T) {
	ctx := context.Background()
	f := newPaymentFixture(t, nil)
	order := f.order(t)
	intent, err := f.payments.CreateIntent(ctx, f.userID, CreateIntentInput{Amount: 10, OrderID: order.ID.Hex()})
	require.NoError(t, err)

	view, err := f.payments.Status(ctx, f.userID, intent.PaymentID)
	require.NoError(t, err)
	require.NotNil(t, view.Order)
	assert.Equal(t, order.ID, view.Order.ID)

	_, err = f.payments.Status(ctx, newUserID(), intent.PaymentID)
	requireAppErr(t, err, apperr.KindNotFound, "Payment not found")
	_, err = f.payments.Status(ctx, f.userID, "bad")
	requireAppErr(t, err, apperr.KindValidation, "Invalid payment ID format")

	assert.Equal(t, gateway.DefaultPublishableKey, f.payments.PublishableKey())
}
