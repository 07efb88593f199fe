// Package redis provides a Redis-backed catalog.Cache.
package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the cache.
const DefaultPrefix = "loanprojection:"

type Cache struct {
	client *redis.Client
	prefix string
}

// New connects to addr. The connection is lazy; use Ping to check it.
func New(addr string) *Cache {
	return NewFromClient(redis.NewClient(&redis.Options{Addr: addr}), DefaultPrefix)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *redis.Client, prefix string) *Cache {
	return &Cache{client: client, prefix: prefix}
}

// Key returns the namespaced key stored in Redis.
func (c *Cache) Key(key string) string {
	return c.prefix + key
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, c.Key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set stores value; ttl <= 0 keeps it until evicted.
func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return c.client.Set(ctx, c.Key(key), value, ttl).Err()
}

func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}
