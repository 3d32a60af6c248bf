// Package cache holds the time-boxed read cache for the client list.
// The cache is an explicit, injected object with explicit invalidation
// calls, never a module-level singleton.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/linapure/salon-api/internal/domain"
)

const usersKey = "salon:users:all"

// UserCache caches the full client list in Redis under a fixed TTL.
// Callers fall through to Postgres on a miss; cache errors are never
// fatal to the caller.
type UserCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewUserCache(redisClient *redis.Client, ttl time.Duration) *UserCache {
	return &UserCache{redis: redisClient, ttl: ttl}
}

// Get returns the cached client list, or (nil, false) on a miss.
func (c *UserCache) Get(ctx context.Context) ([]domain.User, bool) {
	data, err := c.redis.Get(ctx, usersKey).Bytes()
	if err != nil {
		return nil, false
	}

	var users []domain.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, false
	}
	return users, true
}

// Set stores the client list with the configured expiry.
func (c *UserCache) Set(ctx context.Context, users []domain.User) error {
	data, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("marshal users: %w", err)
	}
	if err := c.redis.Set(ctx, usersKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache users: %w", err)
	}
	return nil
}

// Invalidate drops the cached list. Called after every create, update
// or delete of a client or appointment.
func (c *UserCache) Invalidate(ctx context.Context) error {
	return c.redis.Del(ctx, usersKey).Err()
}
