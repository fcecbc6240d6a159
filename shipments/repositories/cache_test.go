package repositories

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set, skipping redis test")
	}

	opts, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	require.NoError(t, client.Ping(context.Background()).Err())

	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestTrackingCacheRoundTrip(t *testing.T) {
	client := setupRedis(t)
	cache := NewTrackingCache(client, time.Minute, zap.NewNop())
	ctx := context.Background()

	type view struct {
		Status string `json:"status"`
	}

	cache.Set(ctx, "CF2420269", view{Status: "in_transit"})
	t.Cleanup(func() { cache.Invalidate(ctx, "CF2420269") })

	var got view
	require.True(t, cache.Get(ctx, "CF2420269", &got))
	assert.Equal(t, "in_transit", got.Status)

	ttl, err := client.TTL(ctx, trackingCacheKey("CF2420269")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	cache.Invalidate(ctx, "CF2420269")
	assert.False(t, cache.Get(ctx, "CF2420269", &got))
}

func TestTrackingCacheDiscardsUnreadableEntries(t *testing.T) {
	client := setupRedis(t)
	cache := NewTrackingCache(client, time.Minute, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, trackingCacheKey("CF20242610"), "not json", time.Minute).Err())
	t.Cleanup(func() { cache.Invalidate(ctx, "CF20242610") })

	var got map[string]any
	assert.False(t, cache.Get(ctx, "CF20242610", &got))
}
