package repository

import (
	"context"
	"errors"
	"fmt"

	"furniro_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoFavorites struct {
	col *mongo.Collection
}

func (r *mongoFavorites) Get(ctx context.Context, userID primitive.ObjectID) (*models.Favorites, error) {
	fav, err := findOne[models.Favorites](ctx, r.col, bson.M{"user": userID})
	if errors.Is(err, ErrNotFound) {
		return &models.Favorites{User: userID, Products: []primitive.ObjectID{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lecture favoris: %w", err)
	}
	if fav.Products == nil {
		fav.Products = []primitive.ObjectID{}
	}
	return fav, nil
}

// Add s'appuie sur l'index unique de user: si le document existe déjà avec le
// produit, le filtre ne correspond pas et l'upsert échoue en clé dupliquée.
func (r *mongoFavorites) Add(ctx context.Context, userID, productID primitive.ObjectID) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"user": userID, "products": bson.M{"$ne": productID}},
		bson.M{"$push": bson.M{"products": productID}},
		options.Update().SetUpsert(true))
	if err != nil {
		return wrapError(err)
	}
	return nil
}

func (r *mongoFavorites) AddMany(ctx context.Context, userID primitive.ObjectID, productIDs []primitive.ObjectID) error {
	if len(productIDs) == 0 {
		return nil
	}
	_, err := r.col.UpdateOne(ctx,
		bson.M{"user": userID},
		bson.M{"$addToSet": bson.M{"products": bson.M{"$each": productIDs}}},
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("fusion favoris: %w", wrapError(err))
	}
	return nil
}

func (r *mongoFavorites) Remove(ctx context.Context, userID, productID primitive.ObjectID) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"user": userID, "products": productID},
		bson.M{"$pull": bson.M{"products": productID}})
	if err != nil {
		return fmt.Errorf("suppression favori: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoFavorites) Clear(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"user": userID},
		bson.M{"$set": bson.M{"products": bson.A{}}})
	if err != nil {
		return fmt.Errorf("vidage favoris: %w", err)
	}
	return nil
}

func (r *mongoFavorites) Contains(ctx context.Context, userID, productID primitive.ObjectID) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"user": userID, "products": productID})
	if err != nil {
		return false, fmt.Errorf("vérification favori: %w", err)
	}
	return n > 0, nil
}
