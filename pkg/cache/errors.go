package cache

import "errors"

// Sentinel errors for caching operations.
var (
	// ErrCacheMiss is returned by helpers that require a cached value to exist.
	ErrCacheMiss = errors.New("cache miss")

	// ErrUnavailable is returned when a cache backend cannot be reached.
	// Callers treat an unavailable cache as a miss and recompute; caching is
	// an optimization, never a correctness dependency.
	ErrUnavailable = errors.New("cache unavailable")
)
