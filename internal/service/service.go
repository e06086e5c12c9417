// Package service porte la logique métier de la boutique entre les handlers
// gin et les repositories.
package service

import (
	"context"
	"errors"
	"fmt"

	"furniro_back_end/internal/apperr"
	"furniro_back_end/internal/models"
	"furniro_back_end/internal/repository"
	"furniro_back_end/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errInvalidSession = apperr.Auth("Invalid or expired token")

// userObjectID convertit l'identifiant issu du token.
func userObjectID(userID string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return primitive.NilObjectID, errInvalidSession
	}
	return id, nil
}

// parseID valide un identifiant fourni par le client.
func parseID(raw, missingMsg, invalidMsg string) (primitive.ObjectID, error) {
	if raw == "" {
		return primitive.NilObjectID, apperr.Validation(missingMsg)
	}
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, apperr.Validation(invalidMsg)
	}
	return id, nil
}

// productsByID charge les produits référencés; les absents sont ignorés.
func productsByID(ctx context.Context, products repository.ProductRepository, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	out := make(map[primitive.ObjectID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	list, err := products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("chargement des produits: %w", err)
	}
	for _, p := range list {
		out[p.ID] = utils.OptimizeProductImages(p)
	}
	return out, nil
}

// requireProduct vérifie l'existence d'un produit.
func requireProduct(ctx context.Context, products repository.ProductRepository, id primitive.ObjectID) (*models.Product, error) {
	p, err := products.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("Product not found")
	}
	if err != nil {
		return nil, apperr.Server(err)
	}
	return p, nil
}
