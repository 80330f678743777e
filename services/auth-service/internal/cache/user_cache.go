// Package cache memoizes user lookups keyed by email. Entries expire on
// their own and are dropped eagerly when a profile changes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/phillipbowles/FixItNow/services/auth-service/internal/domain"
)

const ttl = time.Hour

type UserCache struct {
	rdb *redis.Client
}

func NewUserCache(rdb *redis.Client) *UserCache {
	return &UserCache{rdb: rdb}
}

func key(email string) string {
	return "user:" + email
}

// Get returns (nil, nil) on a miss; cache errors are indistinguishable
// from misses on purpose, the database is always there as fallback.
func (c *UserCache) Get(ctx context.Context, email string) (*domain.User, error) {
	raw, err := c.rdb.Get(ctx, key(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, nil
	}
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, nil
	}
	return &u, nil
}

func (c *UserCache) Set(ctx context.Context, u *domain.User) {
	b, err := json.Marshal(u)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, key(u.Email), b, ttl).Err()
}

func (c *UserCache) Invalidate(ctx context.Context, email string) {
	_ = c.rdb.Del(ctx, key(email)).Err()
}
