// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers can register
// hooks at startup to receive events about geometry passes, cache
// operations, and diagram storage.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPassHooks(&myPassHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pass().OnPassStart(ctx, nodeCount, edgeCount)
//	// ... resolve geometry ...
//	observability.Pass().OnPassComplete(ctx, nodeCount, edgeCount, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pass Hooks
// =============================================================================

// PassHooks receives events from geometry recomputation passes.
type PassHooks interface {
	// OnPassStart records the beginning of a recomputation pass.
	OnPassStart(ctx context.Context, nodeCount, edgeCount int)

	// OnPassComplete records the end of a recomputation pass.
	OnPassComplete(ctx context.Context, nodeCount, edgeCount int, duration time.Duration, err error)

	// OnStructuralViolation records a contained containment-cycle diagnosis.
	OnStructuralViolation(ctx context.Context, nodeID string, err error)

	// OnEdgeDegraded records an edge that resolved to not-renderable.
	OnEdgeDegraded(ctx context.Context, edgeID string, reason string)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from diagram store operations.
type StoreHooks interface {
	// OnStoreRead records a diagram load.
	OnStoreRead(ctx context.Context, backend, diagramID string, err error)

	// OnStoreWrite records a diagram save.
	OnStoreWrite(ctx context.Context, backend, diagramID string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPassHooks is a no-op implementation of PassHooks.
type NoopPassHooks struct{}

func (NoopPassHooks) OnPassStart(context.Context, int, int)                          {}
func (NoopPassHooks) OnPassComplete(context.Context, int, int, time.Duration, error) {}
func (NoopPassHooks) OnStructuralViolation(context.Context, string, error)           {}
func (NoopPassHooks) OnEdgeDegraded(context.Context, string, string)                 {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnStoreRead(context.Context, string, string, error)  {}
func (NoopStoreHooks) OnStoreWrite(context.Context, string, string, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	passHooks  PassHooks  = NoopPassHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	storeHooks StoreHooks = NoopStoreHooks{}
	hooksMu    sync.RWMutex
)

// SetPassHooks registers custom pass hooks.
// This should be called once at application startup before any geometry passes.
func SetPassHooks(h PassHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		passHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any store operations.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Pass returns the registered pass hooks.
func Pass() PassHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return passHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	passHooks = NoopPassHooks{}
	cacheHooks = NoopCacheHooks{}
	storeHooks = NoopStoreHooks{}
}
