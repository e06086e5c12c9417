package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const UserCacheTTL = 5 * time.Minute

// UserCache garde le rôle des utilisateurs pour RequireAdmin.
type UserCache struct {
	store *Store
}

func NewUserCache(client *redis.Client) *UserCache {
	return &UserCache{store: NewStore(client, UserCacheTTL, 0)}
}

func (c *UserCache) GetRole(ctx context.Context, userID string) (string, error) {
	role, err := c.store.Client().Get(ctx, "user:role:"+userID).Result()
	if err == redis.Nil {
		return "", ErrCacheMiss
	}
	return role, err
}

func (c *UserCache) SetRole(ctx context.Context, userID, role string) error {
	return c.store.Client().Set(ctx, "user:role:"+userID, role, UserCacheTTL).Err()
}

func (c *UserCache) Invalidate(ctx context.Context, userID string) error {
	return c.store.Delete(ctx, "user:role:"+userID)
}
