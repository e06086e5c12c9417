package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Price       int64              `bson:"price" json:"price"`
	Category    string             `bson:"category" json:"category"`
	Stock       int                `bson:"stock" json:"stock"`
	Images      []string           `bson:"images" json:"images"`
	Brand       string             `bson:"brand,omitempty" json:"brand,omitempty"`
	Tags        []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Ratings     float64            `bson:"ratings" json:"ratings"`
	NumReviews  float64            `bson:"numReviews" json:"numReviews"`
	Sizes       []string           `bson:"sizes,omitempty" json:"sizes,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ProductInput est le corps accepté pour la création et la mise à jour.
// Les pointeurs distinguent un champ absent d'une valeur zéro lors d'un PUT.
type ProductInput struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Price       *int64    `json:"price"`
	Category    *string   `json:"category"`
	Stock       *int      `json:"stock"`
	Images      *[]string `json:"images"`
	Brand       *string   `json:"brand"`
	Tags        *[]string `json:"tags"`
	Ratings     *float64  `json:"ratings"`
	NumReviews  *float64  `json:"numReviews"`
	Sizes       *[]string `json:"sizes"`
}

// ProductFilter décrit une requête de listing du catalogue.
type ProductFilter struct {
	Category string
	Search   string
}

// CacheKey identifie la liste résultante dans les caches.
func (f ProductFilter) CacheKey() string {
	category := f.Category
	if category == "" {
		category = "all"
	}
	return category + "|" + f.Search
}
