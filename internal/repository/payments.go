package repository

import (
	"context"
	"errors"
	"time"

	"furniro_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoPayments struct {
	col *mongo.Collection
}

func (r *mongoPayments) Create(ctx context.Context, payment *models.Payment) error {
	now := time.Now()
	if payment.ID.IsZero() {
		payment.ID = primitive.NewObjectID()
	}
	payment.CreatedAt = now
	payment.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, payment)
	return wrapError(err)
}

func (r *mongoPayments) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	return findOne[models.Payment](ctx, r.col, bson.M{"_id": id})
}

func (r *mongoPayments) FindByTransaction(ctx context.Context, userID primitive.ObjectID, transactionID string) (*models.Payment, error) {
	return findOne[models.Payment](ctx, r.col, bson.M{"user": userID, "transactionId": transactionID})
}

func (r *mongoPayments) Resolve(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "paymentStatus": models.PaymentPending},
		bson.M{"$set": bson.M{"paymentStatus": status, "updatedAt": time.Now()}})
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		if _, err := r.FindByID(ctx, id); errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return ErrConflict
	}
	return nil
}
