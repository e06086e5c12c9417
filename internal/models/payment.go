package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentMethodCard   = "Card"
	PaymentMethodPayPal = "PayPal"

	PaymentPending = "Pending"
	PaymentSuccess = "Success"
	PaymentFailed  = "Failed"
)

// Payment est une tentative de paiement; une commande peut en avoir plusieurs.
type Payment struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User          primitive.ObjectID `bson:"user" json:"user"`
	Order         primitive.ObjectID `bson:"order" json:"order"`
	PaymentMethod string             `bson:"paymentMethod" json:"paymentMethod"`
	TransactionID string             `bson:"transactionId" json:"transactionId"`
	Amount        int64              `bson:"amount" json:"amount"`
	Currency      string             `bson:"currency" json:"currency"`
	PaymentStatus string             `bson:"paymentStatus" json:"paymentStatus"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PaymentIntent reprend la forme renvoyée au client lors de la création.
type PaymentIntent struct {
	ID             string            `json:"id"`
	ClientSecret   string            `json:"client_secret"`
	Amount         int64             `json:"amount"`
	Currency       string            `json:"currency"`
	Status         string            `json:"status"`
	Metadata       map[string]string `json:"metadata"`
	PublishableKey string            `json:"publishable_key"`
}

// PaymentView est un paiement avec sa commande résolue.
type PaymentView struct {
	Payment
	Order *Order `json:"order"`
}
