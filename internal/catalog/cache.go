package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores JSON snapshots of catalog reads in Redis. Stock moves with
// every settlement, so entries carry a short TTL instead of explicit
// invalidation.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Fetch loads the snapshot under key into dst. A miss or an unusable entry
// reports false without an error so callers fall through to the store.
func (c *Cache) Fetch(ctx context.Context, key string, dst any) bool {
	if !c.enabled() || key == "" {
		return false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

// Store writes v under key with the configured TTL.
func (c *Cache) Store(ctx context.Context, key string, v any) error {
	if !c.enabled() || key == "" {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	return nil
}
