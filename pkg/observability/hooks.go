// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about node runs, external process executions, cache
// operations and HTTP requests.
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
//   - Keeps the adapters free of observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, plain logs)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetProcessHooks(observability.NewLogHooks(logger))
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Process().OnExecStart(ctx, "vpype", args)
//	// ... run the process ...
//	observability.Process().OnExecComplete(ctx, "vpype", exitCode, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Node Hooks
// =============================================================================

// NodeHooks receives events about node invocations.
type NodeHooks interface {
	OnRunStart(ctx context.Context, node string)
	OnRunComplete(ctx context.Context, node string, cached bool, duration time.Duration, err error)
}

// =============================================================================
// Process Hooks
// =============================================================================

// ProcessHooks receives events about external process executions.
type ProcessHooks interface {
	OnExecStart(ctx context.Context, tool string, args []string)
	OnExecComplete(ctx context.Context, tool string, exitCode int, duration time.Duration, err error)
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
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the node server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records the response status and latency.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopNodeHooks is a no-op implementation of NodeHooks.
type NoopNodeHooks struct{}

func (NoopNodeHooks) OnRunStart(context.Context, string)                                {}
func (NoopNodeHooks) OnRunComplete(context.Context, string, bool, time.Duration, error) {}

// NoopProcessHooks is a no-op implementation of ProcessHooks.
type NoopProcessHooks struct{}

func (NoopProcessHooks) OnExecStart(context.Context, string, []string)                     {}
func (NoopProcessHooks) OnExecComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	nodeHooks    NodeHooks    = NoopNodeHooks{}
	processHooks ProcessHooks = NoopProcessHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	httpHooks    HTTPHooks    = NoopHTTPHooks{}
	hooksMu      sync.RWMutex
)

// SetNodeHooks registers custom node hooks.
// This should be called once at application startup before any node runs.
func SetNodeHooks(h NodeHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		nodeHooks = h
	}
}

// SetProcessHooks registers custom process hooks.
func SetProcessHooks(h ProcessHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		processHooks = h
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

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Node returns the registered node hooks.
func Node() NodeHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return nodeHooks
}

// Process returns the registered process hooks.
func Process() ProcessHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return processHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	nodeHooks = NoopNodeHooks{}
	processHooks = NoopProcessHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
