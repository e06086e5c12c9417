package repository

import (
	"context"
	"time"

	"furniro_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoOrders struct {
	col *mongo.Collection
}

func (r *mongoOrders) Create(ctx context.Context, order *models.Order) error {
	if order.ID.IsZero() {
		order.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, order)
	return wrapError(err)
}

func (r *mongoOrders) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	return findOne[models.Order](ctx, r.col, bson.M{"_id": id})
}

func (r *mongoOrders) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return findMany[models.Order](ctx, r.col, bson.M{"user": userID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *mongoOrders) UpdateStatus(ctx context.Context, order *models.Order, expected string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": order.ID, "orderStatus": expected},
		bson.M{"$set": bson.M{
			"orderStatus":      order.OrderStatus,
			"deliveryTracking": order.DeliveryTracking,
			"updatedAt":        order.UpdatedAt,
		}})
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		return ErrConflict
	}
	return nil
}

func (r *mongoOrders) MarkPaid(ctx context.Context, id primitive.ObjectID, transactionID string) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "$or": bson.A{
			bson.M{"paymentStatus": bson.M{"$ne": models.OrderPaymentPaid}},
			bson.M{"transactionId": transactionID},
		}},
		bson.M{"$set": bson.M{
			"paymentStatus": models.OrderPaymentPaid,
			"transactionId": transactionID,
			"updatedAt":     time.Now(),
		}})
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}
