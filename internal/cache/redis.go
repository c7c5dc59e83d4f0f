// Package cache stores shared lookups in Redis. A Cache with no client is a
// valid, always-missing cache, so callers never need a nil check.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "pennywise:"

// Cache wraps a Redis client.
type Cache struct {
	client *redis.Client
}

// Connect dials addr and pings it. An empty addr returns a disabled cache.
func Connect(ctx context.Context, addr, password string) (*Cache, error) {
	if addr == "" {
		return &Cache{}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          0,
		DialTimeout: 2 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return &Cache{client: client}, nil
}

// New wraps an existing client; nil disables the cache.
func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Enabled reports whether a Redis client is configured.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil
}

// Close releases the client.
func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// GetObject decodes the JSON value at key into dest. A missing key is not an error.
func (c *Cache) GetObject(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	val, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// SetObject stores obj as JSON at key with the given expiry.
func (c *Cache) SetObject(ctx context.Context, key string, obj interface{}, exp time.Duration) error {
	if !c.Enabled() {
		return nil
	}
	data, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return c.client.Set(ctx, keyPrefix+key, data, exp).Err()
}

// Delete removes keys.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if !c.Enabled() || len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = keyPrefix + k
	}
	return c.client.Del(ctx, prefixed...).Err()
}

func currencyKey(base string) string {
	return "currencies:" + base
}

// GetCodes returns the cached supported-currency list for base.
func (c *Cache) GetCodes(ctx context.Context, base string) ([]string, bool, error) {
	var codes []string
	ok, err := c.GetObject(ctx, currencyKey(base), &codes)
	if err != nil || !ok {
		return nil, false, err
	}
	return codes, true, nil
}

// SetCodes caches the supported-currency list for base.
func (c *Cache) SetCodes(ctx context.Context, base string, codes []string, ttl time.Duration) error {
	return c.SetObject(ctx, currencyKey(base), codes, ttl)
}
