package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CartItem struct {
	Product  primitive.ObjectID `bson:"product" json:"product"`
	Quantity int                `bson:"quantity" json:"quantity"`
}

type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	User      primitive.ObjectID `bson:"user" json:"user"`
	Items     []CartItem         `bson:"items" json:"items"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// CartLine est une ligne de panier avec le produit résolu; Product vaut nil
// si le produit a été supprimé du catalogue.
type CartLine struct {
	Product  *Product `json:"product"`
	Quantity int      `json:"quantity"`
}

type CartView struct {
	User  primitive.ObjectID `json:"user"`
	Items []CartLine         `json:"items"`
	Total int64              `json:"total"`
	Count int                `json:"count"`
}

// NewCartView assemble la vue du panier à partir des produits connus.
func NewCartView(cart *Cart, products map[primitive.ObjectID]Product) CartView {
	view := CartView{User: cart.User, Items: make([]CartLine, 0, len(cart.Items))}
	for _, item := range cart.Items {
		line := CartLine{Quantity: item.Quantity}
		if p, ok := products[item.Product]; ok {
			p := p
			line.Product = &p
			view.Total += p.Price * int64(item.Quantity)
		}
		view.Count += item.Quantity
		view.Items = append(view.Items, line)
	}
	return view
}
