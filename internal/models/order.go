package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PaymentMethodUPI    = "UPI"
	PaymentMethodCOD    = "Cash On Delivery"
	PaymentMethodStripe = "Stripe"

	OrderPaymentPending = "Pending"
	OrderPaymentPaid    = "Paid"
	OrderPaymentFailed  = "Failed"

	DefaultCountry = "India"
)

var PaymentMethods = []string{PaymentMethodUPI, PaymentMethodCOD, PaymentMethodStripe}

func IsValidPaymentMethod(method string) bool {
	for _, m := range PaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}

type BillingDetails struct {
	FirstName   string `bson:"firstName" json:"firstName"`
	LastName    string `bson:"lastName" json:"lastName"`
	CompanyName string `bson:"companyName,omitempty" json:"companyName,omitempty"`
	Phone       string `bson:"phone" json:"phone"`
	Email       string `bson:"email" json:"email"`
}

type ShippingAddress struct {
	StreetAddress string `bson:"streetAddress" json:"streetAddress"`
	City          string `bson:"city" json:"city"`
	Province      string `bson:"province" json:"province"`
	Country       string `bson:"country" json:"country"`
	PostalCode    string `bson:"postalCode" json:"postalCode"`
}

type OrderItem struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Quantity int                `bson:"quantity" json:"quantity"`
}

type TrackingStep struct {
	Status    bool       `bson:"status" json:"status"`
	Timestamp *time.Time `bson:"timestamp,omitempty" json:"timestamp,omitempty"`
}

type DeliveryTracking struct {
	OrderPlaced    TrackingStep `bson:"orderPlaced" json:"orderPlaced"`
	Confirmed      TrackingStep `bson:"confirmed" json:"confirmed"`
	Shipped        TrackingStep `bson:"shipped" json:"shipped"`
	OutForDelivery TrackingStep `bson:"outForDelivery" json:"outForDelivery"`
	Delivered      TrackingStep `bson:"delivered" json:"delivered"`
	Cancelled      TrackingStep `bson:"cancelled" json:"cancelled"`
}

type Order struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User             primitive.ObjectID `bson:"user" json:"user"`
	BillingDetails   BillingDetails     `bson:"billingDetails" json:"billingDetails"`
	ShippingAddress  ShippingAddress    `bson:"shippingAddress" json:"shippingAddress"`
	OrderItems       []OrderItem        `bson:"orderItems" json:"orderItems"`
	PaymentMethod    string             `bson:"paymentMethod" json:"paymentMethod"`
	PaymentStatus    string             `bson:"paymentStatus" json:"paymentStatus"`
	TransactionID    string             `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	Subtotal         int64              `bson:"subtotal" json:"subtotal"`
	TotalAmount      int64              `bson:"totalAmount" json:"totalAmount"`
	AdditionalInfo   string             `bson:"additionalInfo,omitempty" json:"additionalInfo,omitempty"`
	OrderStatus      string             `bson:"orderStatus" json:"orderStatus"`
	DeliveryTracking DeliveryTracking   `bson:"deliveryTracking" json:"deliveryTracking"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// OrderInput est le corps de POST /api/orders. Les sections sont des pointeurs
// pour distinguer une section absente d'une section vide.
type OrderInput struct {
	BillingDetails  *BillingDetails  `json:"billingDetails"`
	ShippingAddress *ShippingAddress `json:"shippingAddress"`
	OrderItems      []OrderItemInput `json:"orderItems"`
	PaymentMethod   string           `json:"paymentMethod"`
	Subtotal        int64            `json:"subtotal"`
	TotalAmount     int64            `json:"totalAmount"`
	AdditionalInfo  string           `json:"additionalInfo"`
}

type OrderItemInput struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

type OrderLine struct {
	Product  *Product `json:"product"`
	Quantity int      `json:"quantity"`
}

// OrderView est une commande dont les produits sont résolus.
type OrderView struct {
	Order
	OrderItems []OrderLine `json:"orderItems"`
}

func NewOrderView(order Order, products map[primitive.ObjectID]Product) OrderView {
	view := OrderView{Order: order, OrderItems: make([]OrderLine, 0, len(order.OrderItems))}
	for _, item := range order.OrderItems {
		line := OrderLine{Quantity: item.Quantity}
		if p, ok := products[item.Product]; ok {
			p := p
			line.Product = &p
		}
		view.OrderItems = append(view.OrderItems, line)
	}
	return view
}
