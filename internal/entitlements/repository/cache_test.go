package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bid2Bid/bid2bid-backend/internal/entitlements/domain"
)

func setupCache(t *testing.T, ttl time.Duration) (*StatusCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewStatusCache(client, ttl), mr
}

func TestStatusCache_RoundTrip(t *testing.T) {
	cache, _ := setupCache(t, time.Minute)
	ctx := context.Background()

	_, ok := cache.Get(ctx, "user-1")
	assert.False(t, ok, "empty cache reads as a miss")

	end := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, cache.Set(ctx, "user-1", domain.Status{
		Subscribed:      true,
		Tier:            "premium",
		SubscriptionEnd: &end,
	}))

	got, ok := cache.Get(ctx, "user-1")
	require.True(t, ok)
	assert.True(t, got.Subscribed)
	assert.Equal(t, "premium", got.Tier)
	require.NotNil(t, got.SubscriptionEnd)
	assert.True(t, got.SubscriptionEnd.Equal(end))
}

func TestStatusCache_Expires(t *testing.T) {
	cache, mr := setupCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "user-1", domain.Status{Subscribed: true}))

	mr.FastForward(2 * time.Minute)

	_, ok := cache.Get(ctx, "user-1")
	assert.False(t, ok)
}

func TestStatusCache_Invalidate(t *testing.T) {
	cache, _ := setupCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "user-1", domain.Status{Subscribed: true}))
	require.NoError(t, cache.Invalidate(ctx, "user-1"))

	_, ok := cache.Get(ctx, "user-1")
	assert.False(t, ok)
}

func TestStatusCache_BadPayloadIsMiss(t *testing.T) {
	cache, mr := setupCache(t, time.Minute)

	require.NoError(t, mr.Set("ent:status:user-1", "not json"))

	_, ok := cache.Get(context.Background(), "user-1")
	assert.False(t, ok)
}
