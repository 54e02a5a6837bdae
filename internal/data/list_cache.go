package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const listCacheKeyPrefix = "storyapi:stories:list:"

// RedisListCache caches serialized story list pages in Redis. Lookups and
// writes are best effort: a cache outage degrades to the database, never to
// a request failure.
type RedisListCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisListCache creates a RedisListCache with the given page TTL.
func NewRedisListCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisListCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisListCache{client: client, ttl: ttl, logger: logger}
}

// GetPage returns the cached payload for the page key, or (nil, false) on a
// miss or any cache error.
func (c *RedisListCache) GetPage(ctx context.Context, key string) ([]byte, bool) {
	if c.client == nil {
		return nil, false
	}
	payload, err := c.client.Get(ctx, listCacheKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("list cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	return payload, true
}

// SetPage stores the payload under the page key. Errors are logged and dropped.
func (c *RedisListCache) SetPage(ctx context.Context, key string, payload []byte) {
	if c.client == nil {
		return
	}
	if err := c.client.Set(ctx, listCacheKeyPrefix+key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("list cache write failed", "key", key, "error", err)
	}
}

// Invalidate drops every cached list page. Called after any story write.
func (c *RedisListCache) Invalidate(ctx context.Context) {
	if c.client == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, listCacheKeyPrefix+"*", 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("list cache scan failed", "error", err)
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("list cache invalidation failed", "error", err)
	}
}

// PageKey derives a stable cache key from list parameters.
func PageKey(params any) string {
	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%v", params)
	}
	return string(raw)
}
