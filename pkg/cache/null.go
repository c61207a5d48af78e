package cache

import (
	"context"
	"time"
)

// NullCache discards everything and always misses. It is the backend behind
// the "none" configuration and the --no-cache flag.
type NullCache struct{}

// NewNullCache creates a cache that never stores anything.
func NewNullCache() Cache { return &NullCache{} }

// Get always misses.
func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set discards the value.
func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete does nothing.
func (c *NullCache) Delete(ctx context.Context, key string) error { return nil }

// Close does nothing.
func (c *NullCache) Close() error { return nil }

var _ Cache = (*NullCache)(nil)
