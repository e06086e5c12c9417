package utils

import (
	"strings"
	"testing"
	"time"

	"furniro_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))

	ok, err := VerifyPassword("s3cret!", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPassword_Bcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("legacy-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := VerifyPassword("legacy-pass", string(legacy))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("nope", string(legacy))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPassword_Malformed(t *testing.T) {
	_, err := VerifyPassword("x", "plaintext")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	user := models.User{ID: primitive.NewObjectID(), Email: "a@b.c", Role: models.RoleAdmin}

	token, err := issuer.GenerateJWT(user)
	require.NoError(t, err)

	claims, err := issuer.ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, "a@b.c", claims.Email)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", time.Hour)
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := issuer.GenerateJWT(models.User{ID: primitive.NewObjectID()})
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.ParseJWT(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	token, err := NewTokenIssuer("one", time.Hour).GenerateJWT(models.User{ID: primitive.NewObjectID()})
	require.NoError(t, err)

	_, err = NewTokenIssuer("two", time.Hour).ParseJWT(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestOptimizeImageURL(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"https://images.unsplash.com/photo-1", "https://images.unsplash.com/photo-1?w=800&q=80&fm=webp&fit=crop"},
		{"https://images.pexels.com/photos/1.jpg", "https://images.pexels.com/photos/1.jpg?auto=compress&cs=tinysrgb&w=800&h=600&fit=crop"},
		{"https://images.unsplash.com/photo-1?w=200", "https://images.unsplash.com/photo-1?w=200"},
		{"https://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OptimizeImageURL(tt.in))
	}
}

func TestOptimizeProductImages_DoesNotMutateInput(t *testing.T) {
	p := models.Product{Images: []string{"https://images.unsplash.com/x"}}
	out := OptimizeProductImages(p)

	assert.Equal(t, "https://images.unsplash.com/x", p.Images[0])
	assert.Contains(t, out.Images[0], "fm=webp")
}
