package push

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStore(rdb)
}

func TestPushAndRecentNewestFirst(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Push(ctx, "u1", "first", "body1"))
	require.NoError(t, s.Push(ctx, "u1", "second", "body2"))

	got, err := s.Recent(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[0].Title)
	assert.Equal(t, "first", got[1].Title)
	assert.False(t, got[0].Read)
}

func TestRecentHonorsLimitAndCap(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	for i := 0; i < 120; i++ {
		require.NoError(t, s.Push(ctx, "u1", fmt.Sprintf("n%d", i), "b"))
	}

	got, err := s.Recent(ctx, "u1", 5)
	require.NoError(t, err)
	assert.Len(t, got, 5)
	assert.Equal(t, "n119", got[0].Title)

	all, err := s.Recent(ctx, "u1", capacity+50)
	require.NoError(t, err)
	assert.Len(t, all, capacity, "list must stay capped")
}

func TestMarkAllReadPreservesOrder(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	require.NoError(t, s.Push(ctx, "u1", "a", "b"))
	require.NoError(t, s.Push(ctx, "u1", "b", "b"))
	require.NoError(t, s.Push(ctx, "u1", "c", "b"))

	require.NoError(t, s.MarkAllRead(ctx, "u1"))

	got, err := s.Recent(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "c", got[0].Title)
	assert.Equal(t, "a", got[2].Title)
	for _, n := range got {
		assert.True(t, n.Read)
	}
}

func TestMarkAllReadOnEmptyUser(t *testing.T) {
	s := newStore(t)
	assert.NoError(t, s.MarkAllRead(context.Background(), "ghost"))
}
