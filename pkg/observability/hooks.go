// Package observability lets bee's libraries report what they do without
// depending on a metrics backend.
//
// The collector, the caches and the HTTP client call the hooks returned by
// [Collect], [Cache] and [HTTP]. Until something is installed those are
// no-ops. An implementation can cover any subset of the hook interfaces:
//
//	observability.Install(myHooks) // registers every interface myHooks implements
//
// The prom subpackage implements all three with Prometheus metrics.
package observability

import (
	"context"
	"sync"
	"time"
)

// CollectHooks receives dependency collection events.
type CollectHooks interface {
	OnCollectStart(ctx context.Context, root string, direct int)
	OnCollectComplete(ctx context.Context, root string, nodes int, duration time.Duration, err error)

	// OnDescriptorRead records one descriptor fetch that missed the pool.
	OnDescriptorRead(ctx context.Context, coordinate string, duration time.Duration, err error)

	// OnTransformComplete records one run of the transformer chain.
	OnTransformComplete(ctx context.Context, nodes int, duration time.Duration, err error)
}

// CacheHooks receives cache events. keyType is the key's type prefix,
// "http" or "libraries".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives repository request events.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records a request that got no response.
	OnError(ctx context.Context, method, host, path string, err error)

	// OnRetry records a repeated attempt; attempt counts from 2.
	OnRetry(ctx context.Context, host string, attempt int)
}

// NoopCollectHooks ignores every collection event.
type NoopCollectHooks struct{}

func (NoopCollectHooks) OnCollectStart(context.Context, string, int)                          {}
func (NoopCollectHooks) OnCollectComplete(context.Context, string, int, time.Duration, error) {}
func (NoopCollectHooks) OnDescriptorRead(context.Context, string, time.Duration, error)       {}
func (NoopCollectHooks) OnTransformComplete(context.Context, int, time.Duration, error)       {}

// NoopCacheHooks ignores every cache event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every HTTP event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}
func (NoopHTTPHooks) OnRetry(context.Context, string, int)                                   {}

type registry struct {
	mu      sync.RWMutex
	collect CollectHooks
	cache   CacheHooks
	http    HTTPHooks
}

var hooks = registry{collect: NoopCollectHooks{}, cache: NoopCacheHooks{}, http: NoopHTTPHooks{}}

// Install registers h for every hook interface it implements and reports
// whether it implemented any. Install it before collections start.
func Install(h any) bool {
	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	installed := false
	if c, ok := h.(CollectHooks); ok {
		hooks.collect, installed = c, true
	}
	if c, ok := h.(CacheHooks); ok {
		hooks.cache, installed = c, true
	}
	if c, ok := h.(HTTPHooks); ok {
		hooks.http, installed = c, true
	}
	return installed
}

// Reset restores the no-op hooks.
func Reset() {
	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	hooks.collect = NoopCollectHooks{}
	hooks.cache = NoopCacheHooks{}
	hooks.http = NoopHTTPHooks{}
}

// Collect returns the installed collection hooks.
func Collect() CollectHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.collect
}

// Cache returns the installed cache hooks.
func Cache() CacheHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.cache
}

// HTTP returns the installed HTTP hooks.
func HTTP() HTTPHooks {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return hooks.http
}
