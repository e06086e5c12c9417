package cache

import (
	"context"
	"testing"
	"time"

	"furniro_back_end/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestStore_Miss(t *testing.T) {
	client, _ := setupTestRedis(t)
	store := NewStore(client, time.Minute, 0)

	var out map[string]string
	err := store.GetJSON(context.Background(), "nope", &out)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestStore_InvalidJSON(t *testing.T) {
	client, mr := setupTestRedis(t)
	store := NewStore(client, time.Minute, 0)
	require.NoError(t, mr.Set("broken", "{\"a\":"))

	var out map[string]string
	err := store.GetJSON(context.Background(), "broken", &out)
	require.ErrorContains(t, err, "unmarshal broken failed")
}

func TestProductCache_ListTTLWithJitter(t *testing.T) {
	client, mr := setupTestRedis(t)
	pc := NewProductCache(client, 30*time.Minute)
	ctx := context.Background()
	filter := models.ProductFilter{Category: "Chair"}

	products := []models.Product{{ID: primitive.NewObjectID(), Name: "Syltherine", Price: 250000}}
	require.NoError(t, pc.SetList(ctx, filter, products))

	ttl := mr.TTL(productListPrefix + "Chair|")
	assert.True(t, ttl >= 30*time.Minute, "TTL should be at least base TTL")
	assert.True(t, ttl < 35*time.Minute, "TTL should be base + max jitter")

	got, err := pc.GetList(ctx, filter)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Syltherine", got[0].Name)
}

func TestProductCache_InvalidateDropsListsAndItem(t *testing.T) {
	client, mr := setupTestRedis(t)
	pc := NewProductCache(client, time.Minute)
	ctx := context.Background()

	p := &models.Product{ID: primitive.NewObjectID(), Name: "Lolito"}
	require.NoError(t, pc.Set(ctx, p))
	require.NoError(t, pc.SetList(ctx, models.ProductFilter{}, []models.Product{*p}))
	require.NoError(t, pc.SetList(ctx, models.ProductFilter{Search: "lol"}, []models.Product{*p}))

	require.NoError(t, pc.Invalidate(ctx, p.ID.Hex()))

	assert.False(t, mr.Exists(productPrefix+p.ID.Hex()))
	assert.False(t, mr.Exists(productListPrefix+"all|"))
	assert.False(t, mr.Exists(productListPrefix+"all|lol"))
}

func TestUserCache_Role(t *testing.T) {
	client, mr := setupTestRedis(t)
	uc := NewUserCache(client)
	ctx := context.Background()

	_, err := uc.GetRole(ctx, "u1")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, uc.SetRole(ctx, "u1", models.RoleAdmin))
	role, err := uc.GetRole(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)

	mr.FastForward(UserCacheTTL + time.Second)
	_, err = uc.GetRole(ctx, "u1")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestRateLimiter_WindowStartsOnFirstHit(t *testing.T) {
	client, mr := setupTestRedis(t)
	rl := NewRateLimiter(client)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		n, err := rl.Hit(ctx, "cart_add:u1", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, int64(i), n)
	}
	mr.FastForward(time.Minute + time.Second)

	n, err := rl.Count(ctx, "cart_add:u1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRateLimiter_Cooldown(t *testing.T) {
	client, _ := setupTestRedis(t)
	rl := NewRateLimiter(client)
	ctx := context.Background()

	assert.Zero(t, rl.Blocked(ctx, "login:a@b.c"))
	require.NoError(t, rl.Block(ctx, "login:a@b.c", 15*time.Minute))
	assert.Greater(t, rl.Blocked(ctx, "login:a@b.c"), 14*time.Minute)

	require.NoError(t, rl.Reset(ctx, "login:a@b.c"))
	assert.Zero(t, rl.Blocked(ctx, "login:a@b.c"))
}

func TestCartNotifier_PublishSubscribe(t *testing.T) {
	client, _ := setupTestRedis(t)
	n := NewCartNotifier(client)
	ctx := context.Background()

	sub := n.Subscribe(ctx, "u1")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	n.Publish(ctx, "u1", CartEvent{Type: CartEventUpdated, ProductID: "p1"})

	select {
	case msg := <-sub.Channel():
		ev, err := DecodeCartEvent(msg.Payload)
		require.NoError(t, err)
		assert.Equal(t, CartEventUpdated, ev.Type)
		assert.Equal(t, "p1", ev.ProductID)
	case <-time.After(2 * time.Second):
		t.Fatal("no cart event received")
	}
}

func TestCartNotifier_NilIsNoop(t *testing.T) {
	var n *CartNotifier
	assert.NotPanics(t, func() {
		n.Publish(context.Background(), "u1", CartEvent{Type: CartEventCleared})
	})
}

func TestProductCache_LoadListCallsLoaderOnce(t *testing.T) {
	client, _ := setupTestRedis(t)
	pc := NewProductCache(client, time.Minute)
	ctx := context.Background()
	filter := models.ProductFilter{Category: "Sofas"}

	calls := 0
	load := func(context.Context) ([]models.Product, error) {
		calls++
		return []models.Product{{Name: "Leviosa"}}, nil
	}

	first, err := pc.LoadList(ctx, filter, load)
	require.NoError(t, err)
	second, err := pc.LoadList(ctx, filter, load)
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
}
