package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"furniro_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Nombre de tentatives quand des ajouts concurrents créent le panier puis la ligne.
const cartAddRetries = 5

type mongoCarts struct {
	col *mongo.Collection
}

func (r *mongoCarts) Get(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	cart, err := findOne[models.Cart](ctx, r.col, bson.M{"user": userID})
	if errors.Is(err, ErrNotFound) {
		return &models.Cart{User: userID, Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lecture panier: %w", err)
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return cart, nil
}

// AddItem incrémente la ligne existante, sinon l'ajoute (en créant le panier
// au besoin). Chaque branche est une écriture atomique sur le document.
func (r *mongoCarts) AddItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error {
	for attempt := 0; attempt < cartAddRetries; attempt++ {
		now := time.Now()

		res, err := r.col.UpdateOne(ctx,
			bson.M{"user": userID, "items.product": productID},
			bson.M{
				"$inc": bson.M{"items.$.quantity": quantity},
				"$set": bson.M{"updatedAt": now},
			})
		if err != nil {
			return fmt.Errorf("incrément panier: %w", err)
		}
		if res.MatchedCount > 0 {
			return nil
		}

		_, err = r.col.UpdateOne(ctx,
			bson.M{"user": userID, "items.product": bson.M{"$ne": productID}},
			bson.M{
				"$push": bson.M{"items": models.CartItem{Product: productID, Quantity: quantity}},
				"$set":  bson.M{"updatedAt": now},
			},
			options.Update().SetUpsert(true))
		if err == nil {
			return nil
		}
		// Le produit a été ajouté entre les deux écritures: on réessaie l'incrément
		if !mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("ajout panier: %w", err)
		}
	}
	return ErrConflict
}

func (r *mongoCarts) DecreaseItem(ctx context.Context, userID, productID primitive.ObjectID) error {
	now := time.Now()
	res, err := r.col.UpdateOne(ctx,
		bson.M{"user": userID, "items": bson.M{"$elemMatch": bson.M{"product": productID, "quantity": bson.M{"$gt": 1}}}},
		bson.M{
			"$inc": bson.M{"items.$.quantity": -1},
			"$set": bson.M{"updatedAt": now},
		})
	if err != nil {
		return fmt.Errorf("décrément panier: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	return r.RemoveItem(ctx, userID, productID)
}

func (r *mongoCarts) SetQuantity(ctx context.Context, userID, productID primitive.ObjectID, quantity int) error {
	if quantity <= 0 {
		return r.RemoveItem(ctx, userID, productID)
	}
	res, err := r.col.UpdateOne(ctx,
		bson.M{"user": userID, "items.product": productID},
		bson.M{"$set": bson.M{"items.$.quantity": quantity, "updatedAt": time.Now()}})
	if err != nil {
		return fmt.Errorf("mise à jour quantité: %w", err)
	}
	if res.MatchedCount == 0 {
		return r.AddItem(ctx, userID, productID, quantity)
	}
	return nil
}

func (r *mongoCarts) RemoveItem(ctx context.Context, userID, productID primitive.ObjectID) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"user": userID, "items.product": productID},
		bson.M{
			"$pull": bson.M{"items": bson.M{"product": productID}},
			"$set":  bson.M{"updatedAt": time.Now()},
		})
	if err != nil {
		return fmt.Errorf("suppression ligne panier: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoCarts) Clear(ctx context.Context, userID primitive.ObjectID) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"user": userID},
		bson.M{"$set": bson.M{"items": bson.A{}, "updatedAt": time.Now()}})
	if err != nil {
		return fmt.Errorf("vidage panier: %w", err)
	}
	return nil
}
