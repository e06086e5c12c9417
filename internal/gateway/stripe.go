package gateway

import (
	"context"
	"fmt"
	"log"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
)

// testPaymentMethod est la carte de test Stripe utilisée pour confirmer côté serveur.
const testPaymentMethod = "pm_card_visa"

// Stripe crée de vraies PaymentIntent en mode test.
type Stripe struct {
	publishableKey string
}

func NewStripe(secretKey, publishableKey string) *Stripe {
	stripe.Key = secretKey
	if publishableKey == "" {
		publishableKey = DefaultPublishableKey
	}
	log.Println("✅ Stripe initialisé")
	return &Stripe{publishableKey: publishableKey}
}

func (s *Stripe) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
		Metadata: metadata,
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("création PaymentIntent Stripe: %w", err)
	}
	log.Printf("💳 PaymentIntent créé : %s (%d %s)", pi.ID, pi.Amount, pi.Currency)

	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Status:       string(pi.Status),
		Created:      pi.Created,
		Metadata:     pi.Metadata,
	}, nil
}

func (s *Stripe) Confirm(ctx context.Context, intentID string) (bool, error) {
	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(testPaymentMethod),
	}
	params.Context = ctx

	pi, err := paymentintent.Confirm(intentID, params)
	if err != nil {
		// Un refus de carte est un échec de paiement, pas une erreur serveur.
		if stripeErr, ok := err.(*stripe.Error); ok && stripeErr.Type == stripe.ErrorTypeCard {
			log.Printf("⚠️ Paiement refusé par Stripe (%s): %s", intentID, stripeErr.Msg)
			return false, nil
		}
		return false, fmt.Errorf("confirmation PaymentIntent Stripe: %w", err)
	}
	return pi.Status == stripe.PaymentIntentStatusSucceeded, nil
}

func (s *Stripe) PublishableKey() string {
	return s.publishableKey
}
