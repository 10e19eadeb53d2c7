package leaderboardcache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pcacademy/backend/core"
	"github.com/pcacademy/backend/core/leaderboard"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := NewClient(core.RedisConfig{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client), mr
}

func TestCache_AddAndTop(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)

	now := time.Now().UTC()
	entries := []leaderboard.Entry{
		{ID: "alice@example.com", DisplayName: "Alice", Score: 50, LastUpdatedAt: now},
		{ID: "bob@example.com", DisplayName: "Bob", Score: 80, LastUpdatedAt: now},
		{ID: "carol@example.com", DisplayName: "Carol", Score: 30, LastUpdatedAt: now},
	}
	for _, e := range entries {
		require.NoError(t, cache.Add(ctx, e))
	}
	assert.True(t, mr.Exists("leaderboard:scores"))
	assert.True(t, mr.Exists("leaderboard:entry:bob@example.com"))

	top, err := cache.Top(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "Bob", top[0].DisplayName)
	assert.Equal(t, 1, top[0].Rank)
	assert.Equal(t, "Alice", top[1].DisplayName)
	assert.Equal(t, 2, top[1].Rank)

	// re-adding with a higher score reorders
	require.NoError(t, cache.Add(ctx, leaderboard.Entry{ID: "carol@example.com", DisplayName: "Carol", Score: 100}))
	top, err = cache.Top(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "Carol", top[0].DisplayName)
}

func TestCache_TopEmpty(t *testing.T) {
	cache, _ := newTestCache(t)

	top, err := cache.Top(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}
