package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const identityCacheKeyPrefix = "blt:uc:"

// IdentityCache maps external ids to universal client ids in front of the store.
type IdentityCache interface {
	Get(ctx context.Context, externalID string) (int64, bool, error)
	Set(ctx context.Context, externalID string, universalClientID int64) error
}

type redisIdentityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisIdentityCache returns an IdentityCache stored in Redis with the given TTL.
func NewRedisIdentityCache(client *redis.Client, ttl time.Duration) IdentityCache {
	return &redisIdentityCache{client: client, ttl: ttl}
}

func (c *redisIdentityCache) Get(ctx context.Context, externalID string) (int64, bool, error) {
	raw, err := c.client.Get(ctx, identityCacheKeyPrefix+externalID).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// Corrupt entry; treat as a miss so the store is consulted.
		return 0, false, nil
	}
	return id, true, nil
}

func (c *redisIdentityCache) Set(ctx context.Context, externalID string, universalClientID int64) error {
	return c.client.Set(ctx, identityCacheKeyPrefix+externalID, universalClientID, c.ttl).Err()
}
