package repository

import (
	"context"
	"strings"
	"time"

	"furniro_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type mongoUsers struct {
	col *mongo.Collection
}

func (r *mongoUsers) Create(ctx context.Context, user *models.User) error {
	now := time.Now()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := r.col.InsertOne(ctx, user)
	return wrapError(err)
}

func (r *mongoUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return findOne[models.User](ctx, r.col, bson.M{"_id": id})
}

func (r *mongoUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, r.col, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *mongoUsers) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return findOne[models.User](ctx, r.col, bson.M{"googleId": googleID})
}

func (r *mongoUsers) LinkGoogle(ctx context.Context, id primitive.ObjectID, googleID, avatar string) error {
	set := bson.M{"googleId": googleID, "authProvider": models.ProviderGoogle, "updatedAt": time.Now()}
	if avatar != "" {
		set["avatar"] = avatar
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUsers) UpdateRole(ctx context.Context, id primitive.ObjectID, role string) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"role": role, "updatedAt": time.Now()}})
	if err != nil {
		return wrapError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
