package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const trackingCachePrefix = "logistics:track:"

// TrackingCache keeps public tracking lookups in redis. A nil client disables it.
type TrackingCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewTrackingCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *TrackingCache {
	return &TrackingCache{client: client, ttl: ttl, logger: logger}
}

func trackingCacheKey(trackingNumber string) string {
	return trackingCachePrefix + trackingNumber
}

// Get decodes the cached value for trackingNumber into dest and reports whether it was found.
func (c *TrackingCache) Get(ctx context.Context, trackingNumber string, dest any) bool {
	if c == nil || c.client == nil {
		return false
	}

	val, err := c.client.Get(ctx, trackingCacheKey(trackingNumber)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Failed to read tracking cache",
				zap.String("tracking_number", trackingNumber),
				zap.Error(err),
			)
		}
		return false
	}

	if err := json.Unmarshal(val, dest); err != nil {
		c.logger.Warn("Discarding unreadable tracking cache entry",
			zap.String("tracking_number", trackingNumber),
			zap.Error(err),
		)
		return false
	}
	return true
}

func (c *TrackingCache) Set(ctx context.Context, trackingNumber string, value any) {
	if c == nil || c.client == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Failed to encode tracking cache entry",
			zap.String("tracking_number", trackingNumber),
			zap.Error(err),
		)
		return
	}

	if err := c.client.Set(ctx, trackingCacheKey(trackingNumber), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Failed to write tracking cache",
			zap.String("tracking_number", trackingNumber),
			zap.Error(err),
		)
	}
}

func (c *TrackingCache) Invalidate(ctx context.Context, trackingNumber string) {
	if c == nil || c.client == nil {
		return
	}

	if err := c.client.Del(ctx, trackingCacheKey(trackingNumber)).Err(); err != nil {
		c.logger.Warn("Failed to invalidate tracking cache",
			zap.String("tracking_number", trackingNumber),
			zap.Error(err),
		)
	}
}
