package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Favorites struct {
	ID       primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	User     primitive.ObjectID   `bson:"user" json:"user"`
	Products []primitive.ObjectID `bson:"products" json:"products"`
}

type FavoritesView struct {
	User     primitive.ObjectID `json:"user"`
	Products []Product          `json:"products"`
}
