package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Bid2Bid/bid2bid-backend/internal/entitlements/domain"
)

const statusKeyPrefix = "ent:status:" // ent:status:{user_id}

// StatusCache keeps recent entitlement checks in Redis so every screen
// mount does not hit Postgres. Misses and Redis failures both read as
// "not cached"; the gate falls through to the durable record.
type StatusCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatusCache creates a status cache with the given freshness TTL.
func NewStatusCache(client *redis.Client, ttl time.Duration) *StatusCache {
	return &StatusCache{client: client, ttl: ttl}
}

// Get returns the cached status for a user and whether one was present.
func (c *StatusCache) Get(ctx context.Context, userID string) (*domain.Status, bool) {
	data, err := c.client.Get(ctx, statusKeyPrefix+userID).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("user_id", userID).Msg("entitlement cache read failed")
		}
		return nil, false
	}

	var s domain.Status
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("entitlement cache payload invalid")
		return nil, false
	}
	return &s, true
}

// Set stores a status snapshot for the cache TTL.
func (c *StatusCache) Set(ctx context.Context, userID string, s domain.Status) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statusKeyPrefix+userID, data, c.ttl).Err()
}

// Invalidate drops the cached status, forcing the next check to re-read
// the durable record. Called whenever the webhook changes entitlement.
func (c *StatusCache) Invalidate(ctx context.Context, userID string) error {
	return c.client.Del(ctx, statusKeyPrefix+userID).Err()
}
