// Package ratelimit is the admission gate at the edge: a fixed-window
// counter per client key, stored in Redis so every gateway replica sees
// the same counts. Fixed windows under-count bursts straddling a window
// boundary; long-run throughput per key still stays within limit/window.
package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

type Limiter struct {
	rdb    *redis.Client
	limit  int64
	window time.Duration
}

func New(rdb *redis.Client, limit int, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, limit: int64(limit), window: window}
}

// Allow admits or rejects one request for key. INCR is atomic, so two
// concurrent requests can never both observe the same stale count; the
// request that creates the counter (INCR returns 1) also sets its TTL,
// which bounds the window and lets Redis expire the key on its own.
//
// Fail-open on a Redis error: admission control protects capacity, and a
// broken limiter store must not take the whole edge down with it.
func (l *Limiter) Allow(ctx context.Context, key string) Decision {
	n, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		log.Printf("[gateway] rate limiter unavailable, failing open: %v", err)
		return Decision{Allowed: true}
	}
	if n == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			log.Printf("[gateway] rate limiter expire failed: %v", err)
		}
		return Decision{Allowed: true}
	}
	if n <= l.limit {
		return Decision{Allowed: true}
	}

	retry := l.window
	if ttl, err := l.rdb.PTTL(ctx, key).Result(); err == nil && ttl > 0 {
		retry = ttl
	}
	return Decision{Allowed: false, RetryAfter: retry}
}

// Key builds the counter key for a client identity.
func Key(clientID string) string {
	return fmt.Sprintf("rate_limit:%s", clientID)
}
