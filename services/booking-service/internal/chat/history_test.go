package chat

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHistory(t *testing.T) (*History, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewHistory(rdb), mr
}

func msg(bookingID, sender, text string) Message {
	return Message{
		Type:      "chat_message",
		BookingID: bookingID,
		SenderID:  sender,
		Message:   text,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func TestRecentReturnsOldestToNewest(t *testing.T) {
	h, _ := newHistory(t)
	ctx := context.Background()

	require.NoError(t, h.Append(ctx, msg("bk1", "u1", "first")))
	require.NoError(t, h.Append(ctx, msg("bk1", "u2", "second")))
	require.NoError(t, h.Append(ctx, msg("bk1", "u1", "third")))

	got, err := h.Recent(ctx, "bk1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].Message)
	assert.Equal(t, "second", got[1].Message)
	assert.Equal(t, "third", got[2].Message)
}

func TestCapacityEvictsOldestFirst(t *testing.T) {
	h, _ := newHistory(t)
	h.capacity = 5
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		require.NoError(t, h.Append(ctx, msg("bk1", "u1", fmt.Sprintf("m%d", i))))
	}

	got, err := h.Recent(ctx, "bk1")
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, "m3", got[0].Message)
	assert.Equal(t, "m7", got[4].Message)
}

func TestAppendRefreshesExpiry(t *testing.T) {
	h, mr := newHistory(t)
	ctx := context.Background()

	require.NoError(t, h.Append(ctx, msg("bk1", "u1", "hello")))
	require.True(t, mr.Exists("chat:booking:bk1"))

	mr.FastForward(23 * time.Hour)
	require.NoError(t, h.Append(ctx, msg("bk1", "u1", "still here")))

	// the first append's TTL alone would have expired by now
	mr.FastForward(2 * time.Hour)
	assert.True(t, mr.Exists("chat:booking:bk1"))

	mr.FastForward(25 * time.Hour)
	assert.False(t, mr.Exists("chat:booking:bk1"))
}

func TestRecentOnEmptyBooking(t *testing.T) {
	h, _ := newHistory(t)
	got, err := h.Recent(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, got)
}
