package gateway

import (
	"context"
	"math/rand"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var intentIDPattern = regexp.MustCompile(`^pi_dummy_\d+_[0-9a-z]{9}$`)

func TestSimulated_CreateIntent(t *testing.T) {
	g := NewSimulated(0.9, "", rand.NewSource(1))
	meta := map[string]string{"orderId": "o1", "userId": "u1"}

	intent, err := g.CreateIntent(context.Background(), 4500000, "inr", meta)
	require.NoError(t, err)

	assert.Regexp(t, intentIDPattern, intent.ID)
	assert.True(t, strings.HasPrefix(intent.ClientSecret, intent.ID+"_secret_"))
	assert.Equal(t, int64(4500000), intent.Amount)
	assert.Equal(t, StatusRequiresPaymentMethod, intent.Status)
	assert.Equal(t, meta, intent.Metadata)
	assert.Equal(t, DefaultPublishableKey, g.PublishableKey())
}

func TestSimulated_IntentIDsAreUnique(t *testing.T) {
	g := NewSimulated(0.9, "pk_test_x", rand.NewSource(7))
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		intent, err := g.CreateIntent(context.Background(), 100, "inr", nil)
		require.NoError(t, err)
		assert.False(t, seen[intent.ID], "duplicate intent id %s", intent.ID)
		seen[intent.ID] = true
	}
}

func TestSimulated_ConfirmConvergesToRate(t *testing.T) {
	g := NewSimulated(0.9, "", rand.NewSource(42))

	success := 0
	for i := 0; i < 1000; i++ {
		ok, err := g.Confirm(context.Background(), "pi")
		require.NoError(t, err)
		if ok {
			success++
		}
	}
	assert.InDelta(t, 900, success, 40)
}

func TestSimulated_RateBounds(t *testing.T) {
	always := NewSimulated(1, "", rand.NewSource(3))
	never := NewSimulated(0, "", rand.NewSource(3))
	for i := 0; i < 50; i++ {
		ok, _ := always.Confirm(context.Background(), "pi")
		assert.True(t, ok)
		ok, _ = never.Confirm(context.Background(), "pi")
		assert.False(t, ok)
	}
}
