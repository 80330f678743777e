// Package push keeps per-user in-app notifications in Redis: a capped
// list per user, newest first, surviving duplicates from broker redelivery
// without corruption (a duplicate is just one more entry trimmed away).
package push

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const capacity = 100

type Notification struct {
	UserID    string `json:"user_id"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Timestamp string `json:"timestamp"`
	Read      bool   `json:"read"`
}

type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

func key(userID string) string {
	return "notifications:user:" + userID
}

func (s *Store) Push(ctx context.Context, userID, title, body string) error {
	n := Notification{
		UserID:    userID,
		Title:     title,
		Body:      body,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(n)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.LPush(ctx, key(userID), b)
	pipe.LTrim(ctx, key(userID), 0, capacity-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push notification: %w", err)
	}
	return nil
}

// Recent returns up to limit notifications, newest first.
func (s *Store) Recent(ctx context.Context, userID string, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	raw, err := s.rdb.LRange(ctx, key(userID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read notifications: %w", err)
	}
	out := make([]Notification, 0, len(raw))
	for _, r := range raw {
		var n Notification
		if err := json.Unmarshal([]byte(r), &n); err != nil {
			return nil, fmt.Errorf("decode notification: %w", err)
		}
		out = append(out, n)
	}
	return out, nil
}

// MarkAllRead rewrites every stored entry with read=true.
func (s *Store) MarkAllRead(ctx context.Context, userID string) error {
	raw, err := s.rdb.LRange(ctx, key(userID), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("read notifications: %w", err)
	}
	if len(raw) == 0 {
		return nil
	}

	updated := make([]interface{}, 0, len(raw))
	// iterate newest-to-oldest and LPUSH in that order so the final list
	// keeps its ordering
	for i := len(raw) - 1; i >= 0; i-- {
		var n Notification
		if err := json.Unmarshal([]byte(raw[i]), &n); err != nil {
			return fmt.Errorf("decode notification: %w", err)
		}
		n.Read = true
		b, err := json.Marshal(n)
		if err != nil {
			return err
		}
		updated = append(updated, b)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, key(userID))
	pipe.LPush(ctx, key(userID), updated...)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}
