// Package cache provides time-boxed memoization of expensive lookups,
// keyed by request fingerprint. Concurrent requests for one key join
// a single in-flight fetch instead of issuing duplicate upstream
// calls. Entries expire after a TTL and are not otherwise evicted.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry[V any] struct {
	value   V
	expires time.Time
}

// Cache is an in-memory TTL cache. Safe for concurrent use.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration
	group   singleflight.Group
}

// New creates a cache whose entries expire after ttl.
func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
	}
}

// Get returns the cached value for key, if present and unexpired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || time.Now().After(e.expires) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value under key with the cache's TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = entry[V]{
		value:   value,
		expires: time.Now().Add(c.ttl),
	}
}

// GetOrFetch returns the cached value for key, or runs fetch to
// produce and cache it. Concurrent callers for the same key share one
// fetch. A failed fetch is not cached. A caller whose ctx ends while
// waiting gets its ctx error; the shared fetch itself keeps running
// for the remaining waiters.
func (c *Cache[V]) GetOrFetch(ctx context.Context, key string, fetch func(context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	// The fetch outlives any single caller: it must not die with the
	// initiator's ctx while other callers are still waiting on it.
	fetchCtx := context.WithoutCancel(ctx)

	ch := c.group.DoChan(key, func() (any, error) {
		// Re-check under the flight: a racing caller may have
		// populated the entry between Get and DoChan.
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.Set(key, v)
		return v, nil
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}

// Key builds a cache key from request fingerprint parts.
func Key(parts ...string) string {
	return strings.Join(parts, "\x1f")
}
