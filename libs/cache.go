package libs

import (
	"context"
	"encoding/json"
	"time"

	"spooky-styles/logger"

	"github.com/redis/go-redis/v9"
)

// Cache is a JSON cache over Redis. A Cache with a nil client is a no-op,
// so the API keeps working when Redis is down.
type Cache struct {
	client *redis.Client
	log    *logger.Logger
}

func NewCache(client *redis.Client, log *logger.Logger) *Cache {
	return &Cache{client: client, log: log}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// GetJSON decodes the cached value into dst and reports whether it was found.
func (c *Cache) GetJSON(ctx context.Context, key string, dst any) bool {
	if !c.Enabled() {
		return false
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Warn().Err(err).Str("key", key).Msg("cache get failed")
		}
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache entry is corrupt, dropping it")
		c.client.Del(ctx, key)
		return false
	}
	return true
}

func (c *Cache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	if !c.Enabled() {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

// DeletePattern removes every key matching a glob pattern, e.g. "products:*".
func (c *Cache) DeletePattern(ctx context.Context, pattern string) {
	if !c.Enabled() {
		return
	}

	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn().Err(err).Str("pattern", pattern).Msg("cache scan failed")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(err).Str("pattern", pattern).Msg("cache invalidation failed")
	}
}
