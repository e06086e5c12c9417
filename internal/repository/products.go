package repository

import (
	"context"
	"regexp"
	"time"

	"furniro_back_end/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoProducts struct {
	col *mongo.Collection
}

func (r *mongoProducts) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
			bson.M{"category": pattern},
		}
	}
	return findMany[models.Product](ctx, r.col, query, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
}

func (r *mongoProducts) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	return findOne[models.Product](ctx, r.col, bson.M{"_id": id})
}

func (r *mongoProducts) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	return findMany[models.Product](ctx, r.col, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *mongoProducts) Create(ctx context.Context, product *models.Product) error {
	now := time.Now()
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	product.CreatedAt = now
	product.UpdatedAt = now
	_, err := r.col.InsertOne(ctx, product)
	return wrapError(err)
}

func (r *mongoProducts) Update(ctx context.Context, id primitive.ObjectID, input models.ProductInput) (*models.Product, error) {
	set := productUpdateFields(input)
	set["updatedAt"] = time.Now()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Product
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		return nil, wrapError(err)
	}
	return &updated, nil
}

func (r *mongoProducts) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrapError(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoProducts) AddImage(ctx context.Context, id primitive.ObjectID, url string) (*models.Product, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.M{
		"$push": bson.M{"images": url},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	var updated models.Product
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&updated); err != nil {
		return nil, wrapError(err)
	}
	return &updated, nil
}

func productUpdateFields(in models.ProductInput) bson.M {
	set := bson.M{}
	if in.Name != nil {
		set["name"] = *in.Name
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.Price != nil {
		set["price"] = *in.Price
	}
	if in.Category != nil {
		set["category"] = *in.Category
	}
	if in.Stock != nil {
		set["stock"] = *in.Stock
	}
	if in.Images != nil {
		set["images"] = *in.Images
	}
	if in.Brand != nil {
		set["brand"] = *in.Brand
	}
	if in.Tags != nil {
		set["tags"] = *in.Tags
	}
	if in.Ratings != nil {
		set["ratings"] = *in.Ratings
	}
	if in.NumReviews != nil {
		set["numReviews"] = *in.NumReviews
	}
	if in.Sizes != nil {
		set["sizes"] = *in.Sizes
	}
	return set
}
