// Package observability provides hooks for metrics, tracing, and logging.
//
// Instrumentation is optional and carries no dependency on a specific
// backend. Consumers register hooks at startup to receive events about
// scans, cache operations and the viewport frame loop.
//
// # Architecture
//
//   - Hook interfaces per event category
//   - No-op default implementations
//   - Registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetScanHooks(&myScanHooks{})
//	    observability.SetViewportHooks(&myViewportHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Scan().OnScanStart(ctx, root)
//	// ... walk the filesystem ...
//	observability.Scan().OnScanComplete(ctx, root, files, bytes, elapsed, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Scan Hooks
// =============================================================================

// ScanHooks receives events from the filesystem scanner.
type ScanHooks interface {
	OnScanStart(ctx context.Context, root string)
	OnScanComplete(ctx context.Context, root string, files, bytes uint64, duration time.Duration, err error)
}

// =============================================================================
// Viewport Hooks
// =============================================================================

// ViewportHooks receives events from the viewport engine. They are called on
// the frame goroutine, so implementations must return quickly.
type ViewportHooks interface {
	// OnFrame records one produced frame.
	OnFrame(drawRects, expansions int, duration time.Duration)

	// OnPrune records a prune pass that collapsed n nodes.
	OnPrune(n int)

	// OnReplace records a size tree swap.
	OnReplace(gen uint64, nodes int)

	// OnDispose records a released layout tree. It runs on the disposal
	// worker, not the frame goroutine.
	OnDispose(nodes int)
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
// No-op Implementations
// =============================================================================

// NoopScanHooks is a no-op implementation of ScanHooks.
type NoopScanHooks struct{}

func (NoopScanHooks) OnScanStart(context.Context, string) {}
func (NoopScanHooks) OnScanComplete(context.Context, string, uint64, uint64, time.Duration, error) {
}

// NoopViewportHooks is a no-op implementation of ViewportHooks.
type NoopViewportHooks struct{}

func (NoopViewportHooks) OnFrame(int, int, time.Duration) {}
func (NoopViewportHooks) OnPrune(int)                     {}
func (NoopViewportHooks) OnReplace(uint64, int)           {}
func (NoopViewportHooks) OnDispose(int)                   {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	scanHooks     ScanHooks     = NoopScanHooks{}
	viewportHooks ViewportHooks = NoopViewportHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetScanHooks registers custom scan hooks.
// This should be called once at application startup before any scan starts.
func SetScanHooks(h ScanHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		scanHooks = h
	}
}

// SetViewportHooks registers custom viewport hooks.
func SetViewportHooks(h ViewportHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		viewportHooks = h
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

// Scan returns the registered scan hooks.
func Scan() ScanHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return scanHooks
}

// Viewport returns the registered viewport hooks.
func Viewport() ViewportHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return viewportHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	scanHooks = NoopScanHooks{}
	viewportHooks = NoopViewportHooks{}
	cacheHooks = NoopCacheHooks{}
}
