package seed

import (
	"context"
	"testing"
	"time"

	"furniro_back_end/internal/models"
	"furniro_back_end/internal/repository/memory"
	"furniro_back_end/internal/service"
	"furniro_back_end/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducts_Embedded(t *testing.T) {
	products, err := Products()
	require.NoError(t, err)
	require.NotEmpty(t, products)
	for _, p := range products {
		assert.NotEmpty(t, p.Name)
		assert.Positive(t, p.Price, p.Name)
		assert.True(t, models.IsValidCategory(p.Category), p.Category)
	}
}

func TestCatalog_Reset(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProducts()
	catalog := service.NewCatalogService(repo, nil, nil, nil, nil)

	first, err := Catalog(ctx, catalog, false)
	require.NoError(t, err)

	_, err = Catalog(ctx, catalog, true)
	require.NoError(t, err)

	all, err := repo.List(ctx, models.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, all, len(first))
}

func TestEnsureAdmin(t *testing.T) {
	ctx := context.Background()
	users := memory.NewUsers()
	auth := service.NewAuthService(users, utils.NewTokenIssuer("seed", time.Hour), nil, nil)

	u, err := EnsureAdmin(ctx, auth, "Admin", "admin@furniro.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)

	// Relancer le seed ne crée pas de doublon.
	again, err := EnsureAdmin(ctx, auth, "Admin", "admin@furniro.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)

	_, err = EnsureAdmin(ctx, auth, "Admin", "admin@furniro.com", "wrong")
	assert.Error(t, err)
}
