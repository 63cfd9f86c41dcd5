package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sifan077/blt/config"
)

const (
	defaultDialTimeout = 30 * time.Second
	// Identity lookups sit on the beacon path; a slow cache is treated as a miss.
	defaultOpTimeout = 200 * time.Millisecond
)

// NewClient builds the identity cache client and verifies connectivity via PING.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(Options(cfg))

	pingCtx, cancel := context.WithTimeout(ctx, defaultDialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	return rdb, nil
}

// Options maps application config onto go-redis options.
func Options(cfg config.RedisConfig) *redis.Options {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 6379
	}

	return &redis.Options{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  defaultOpTimeout,
		WriteTimeout: defaultOpTimeout,
	}
}
