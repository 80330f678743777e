// Package chat keeps a bounded recent-history log of chat messages per
// booking in Redis. The log is ephemeral: capped, expiring, and not part
// of the booking's durable record.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultCapacity = 100
	defaultTTL      = 24 * time.Hour
)

type Message struct {
	Type      string `json:"type"`
	BookingID string `json:"booking_id"`
	SenderID  string `json:"sender_id"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type History struct {
	rdb      *redis.Client
	capacity int64
	ttl      time.Duration
}

func NewHistory(rdb *redis.Client) *History {
	return &History{rdb: rdb, capacity: defaultCapacity, ttl: defaultTTL}
}

func key(bookingID string) string {
	return "chat:booking:" + bookingID
}

// Append pushes the message, trims to capacity (oldest evicted first) and
// refreshes the expiry.
func (h *History) Append(ctx context.Context, m Message) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	k := key(m.BookingID)
	pipe := h.rdb.TxPipeline()
	pipe.LPush(ctx, k, b)
	pipe.LTrim(ctx, k, 0, h.capacity-1)
	pipe.Expire(ctx, k, h.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("append chat history: %w", err)
	}
	return nil
}

// Recent returns the stored messages oldest to newest. The list is stored
// newest-first (LPUSH), so the range is reversed before returning.
func (h *History) Recent(ctx context.Context, bookingID string) ([]Message, error) {
	raw, err := h.rdb.LRange(ctx, key(bookingID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read chat history: %w", err)
	}
	out := make([]Message, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var m Message
		if err := json.Unmarshal([]byte(raw[i]), &m); err != nil {
			return nil, fmt.Errorf("decode chat message: %w", err)
		}
		out = append(out, m)
	}
	return out, nil
}
