package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter compte les requêtes par clé sur une fenêtre fixe.
type RateLimiter struct {
	client *redis.Client
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{client: client}
}

// Count renvoie le compteur courant de la clé.
func (l *RateLimiter) Count(ctx context.Context, key string) (int64, error) {
	n, err := l.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}

// Hit incrémente le compteur; la fenêtre démarre au premier hit.
func (l *RateLimiter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	n, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		l.client.Expire(ctx, key, window)
	}
	return n, nil
}

// Block pose un cooldown explicite sur la clé.
func (l *RateLimiter) Block(ctx context.Context, key string, cooldown time.Duration) error {
	return l.client.Set(ctx, "cooldown:"+key, "1", cooldown).Err()
}

// Blocked renvoie le temps restant du cooldown, 0 si aucun.
func (l *RateLimiter) Blocked(ctx context.Context, key string) time.Duration {
	ttl, err := l.client.TTL(ctx, "cooldown:"+key).Result()
	if err != nil || ttl < 0 {
		return 0
	}
	return ttl
}

func (l *RateLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, key, "cooldown:"+key).Err()
}
