package storefront

import (
	"context"
	"errors"

	"furniro_back_end/internal/apperr"
	"furniro_back_end/internal/client"
	"furniro_back_end/internal/models"
)

// ErrPaymentDeclined accompagne un CheckoutResult dont le paiement a été refusé.
var ErrPaymentDeclined = errors.New("payment declined")

type CheckoutInput struct {
	Billing        models.BillingDetails
	Shipping       models.ShippingAddress
	PaymentMethod  string
	AdditionalInfo string
}

type CheckoutResult struct {
	Order *models.Order
	// Payment est nil pour le paiement à la livraison.
	Payment *client.ConfirmResponse
}

// Checkout crée la commande à partir du panier local. Le paiement à la livraison vide
// le panier immédiatement; UPI et Stripe passent par intent puis confirmation et ne
// vident le panier qu'en cas de succès.
func (a *App) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	if !a.LoggedIn() {
		return nil, errLoginRequired
	}
	items := a.Cart()
	if len(items) == 0 {
		return nil, apperr.Validation("Your cart is empty")
	}

	// Le serveur doit connaître le panier avant la commande.
	a.queue.Wait()

	subtotal := a.CartTotal()
	orderItems := make([]models.OrderItemInput, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, models.OrderItemInput{Product: item.Product.ID.Hex(), Quantity: item.Quantity})
	}
	billing, shipping := in.Billing, in.Shipping
	order, err := a.api.CreateOrder(ctx, models.OrderInput{
		BillingDetails:  &billing,
		ShippingAddress: &shipping,
		OrderItems:      orderItems,
		PaymentMethod:   in.PaymentMethod,
		Subtotal:        subtotal,
		TotalAmount:     subtotal,
		AdditionalInfo:  in.AdditionalInfo,
	})
	if err != nil {
		a.notifier.Error(errorMessage(err))
		return nil, err
	}

	result := &CheckoutResult{Order: order}
	if in.PaymentMethod == models.PaymentMethodCOD {
		a.ClearCart()
		a.notifier.Success("Order placed successfully!")
		return result, nil
	}

	orderID := order.ID.Hex()
	intent, err := a.api.CreatePaymentIntent(ctx, float64(order.TotalAmount), orderID, "")
	if err != nil {
		a.notifier.Error(errorMessage(err))
		return result, err
	}
	confirm, err := a.api.ConfirmPayment(ctx, intent.PaymentIntent.ID, orderID)
	if err != nil {
		a.notifier.Error(errorMessage(err))
		return result, err
	}
	result.Payment = confirm
	if !confirm.Success {
		a.notifier.Error(confirm.Message)
		return result, ErrPaymentDeclined
	}

	a.ClearCart()
	a.notifier.Success("Payment successful! Your order has been confirmed.")
	return result, nil
}
