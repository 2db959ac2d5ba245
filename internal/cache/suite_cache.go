// Package cache holds Redis-backed read-through caches.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const suiteKeyPrefix = "sso-suite:"

// SuiteCache remembers suite ids that are known to exist. Only positive results
// are cached because suites are never deleted. A nil client turns every call
// into a miss.
type SuiteCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSuiteCache builds a cache over client. ttl of zero keeps entries forever.
func NewSuiteCache(client *redis.Client, ttl time.Duration) *SuiteCache {
	return &SuiteCache{client: client, ttl: ttl}
}

// ForRegistry returns a cache for a registry that persists across restarts and nil
// otherwise. Remembered ids must never outlive the suites they name.
func ForRegistry(client *redis.Client, ttl time.Duration, durable bool) *SuiteCache {
	if !durable || client == nil {
		return nil
	}
	return NewSuiteCache(client, ttl)
}

// Known reports whether suiteID was previously remembered.
func (c *SuiteCache) Known(ctx context.Context, suiteID string) (bool, error) {
	if c == nil || c.client == nil {
		return false, nil
	}
	n, err := c.client.Exists(ctx, suiteKeyPrefix+suiteID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Remember records that suiteID exists.
func (c *SuiteCache) Remember(ctx context.Context, suiteID string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Set(ctx, suiteKeyPrefix+suiteID, "1", c.ttl).Err()
}
