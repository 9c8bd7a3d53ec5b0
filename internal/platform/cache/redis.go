// Package cache provides a Redis-backed prediction cache for the
// classifier caching decorator.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/newslens/internal/classifier"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces every key written by RedisCache.
const KeyPrefix = "newslens:predict:"

// cmdable is the subset of the redis client used by RedisCache.
type cmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisCache stores probabilities as JSON values with a TTL.
type RedisCache struct {
	client cmdable
	ttl    time.Duration
}

// NewRedisCache wraps an existing client. A zero ttl stores keys without
// expiry.
func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Dial connects to addr and verifies the connection with PING.
func Dial(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

type entry struct {
	P1 float64 `json:"p1"`
	P2 float64 `json:"p2"`
}

// Get implements classifier.Cache.
func (c *RedisCache) Get(ctx context.Context, key string) (classifier.Probabilities, bool, error) {
	raw, err := c.client.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return classifier.Probabilities{}, false, nil
	}
	if err != nil {
		return classifier.Probabilities{}, false, fmt.Errorf("redis get: %w", err)
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return classifier.Probabilities{}, false, fmt.Errorf("decode cached prediction: %w", err)
	}
	return classifier.Probabilities{e.P1, e.P2}, true, nil
}

// Set implements classifier.Cache.
func (c *RedisCache) Set(ctx context.Context, key string, p classifier.Probabilities) error {
	raw, err := json.Marshal(entry{P1: p[0], P2: p[1]})
	if err != nil {
		return fmt.Errorf("encode prediction: %w", err)
	}
	if err := c.client.Set(ctx, KeyPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
