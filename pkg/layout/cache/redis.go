// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures the Redis-backed subtree cache.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`

	// TTL bounds entry staleness when an invalidation is missed.
	TTL time.Duration `mapstructure:"ttl"`
}

// DefaultRedisConfig returns sensible defaults.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:     "localhost:6379",
		DB:       0,
		PoolSize: 10,
		TTL:      DefaultTTL,
	}
}

// RedisCache implements SubtreeCache on Redis, sharing listings across
// processes. Values are JSON-encoded ChildSummary slices.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a Redis-backed subtree cache and verifies the
// connection.
func NewRedis(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return NewRedisWithClient(client, cfg), nil
}

// NewRedisWithClient creates a subtree cache with an existing client.
func NewRedisWithClient(client *redis.Client, cfg RedisConfig) *RedisCache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) GetChildren(ctx context.Context, key string) ([]ChildSummary, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		MissesTotal.WithLabelValues("redis").Inc()
		return nil, false, nil
	}
	if err != nil {
		ErrorsTotal.WithLabelValues("redis").Inc()
		return nil, false, fmt.Errorf("cache get %s: %w", key, err)
	}

	var items []ChildSummary
	if err := json.Unmarshal(data, &items); err != nil {
		// A corrupt entry behaves like a miss; the writer will replace it.
		ErrorsTotal.WithLabelValues("redis").Inc()
		return nil, false, fmt.Errorf("cache decode %s: %w", key, err)
	}

	HitsTotal.WithLabelValues("redis").Inc()
	return items, true, nil
}

func (c *RedisCache) SetChildren(ctx context.Context, key string, items []ChildSummary) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		ErrorsTotal.WithLabelValues("redis").Inc()
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		ErrorsTotal.WithLabelValues("redis").Inc()
		return fmt.Errorf("cache invalidate %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

var _ SubtreeCache = (*RedisCache)(nil)
