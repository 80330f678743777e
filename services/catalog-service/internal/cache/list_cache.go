// Package cache keeps a short-lived snapshot of the default catalog
// listing. Any write to the catalog drops it.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/phillipbowles/FixItNow/services/catalog-service/internal/domain"
)

const (
	listKey = "services:all"
	listTTL = 5 * time.Minute
)

type ListCache struct {
	rdb *redis.Client
}

func NewListCache(rdb *redis.Client) *ListCache {
	return &ListCache{rdb: rdb}
}

// Get returns nil on a miss or on any cache error.
func (c *ListCache) Get(ctx context.Context) []domain.Service {
	raw, err := c.rdb.Get(ctx, listKey).Result()
	if err != nil {
		return nil
	}
	var out []domain.Service
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

func (c *ListCache) Set(ctx context.Context, services []domain.Service) {
	b, err := json.Marshal(services)
	if err != nil {
		return
	}
	_ = c.rdb.Set(ctx, listKey, b, listTTL).Err()
}

func (c *ListCache) Invalidate(ctx context.Context) {
	_ = c.rdb.Del(ctx, listKey).Err()
}
