package browser

import (
	"sync"
	"time"
)

// Cache stores aggregation results keyed by compiled statement.
// Implementations must be safe for concurrent use.
//
// Caching aggregation results is optional; the model itself is immutable,
// so cached results only go stale when the underlying fact data changes.
// Choose a TTL matching the data's refresh cadence.
type Cache interface {
	// Get retrieves a cached result. Returns false when the entry does
	// not exist or has expired.
	Get(key string) (*AggregationResult, bool)

	// Set stores a result.
	Set(key string, res *AggregationResult)
}

type cacheEntry struct {
	res       *AggregationResult
	expiresAt time.Time // zero means no expiry
}

// MemoryCache is the default in-memory Cache with optional TTL. It uses
// a sync.RWMutex for goroutine safety and grows unbounded within its TTL
// window; long-running processes with many distinct queries should use a
// bounded external cache instead.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]cacheEntry
	ttl   time.Duration // 0 means no expiry
}

// CacheOption configures a MemoryCache.
type CacheOption func(*MemoryCache)

// WithTTL sets the time-to-live for cache entries. Entries older than the
// TTL are re-fetched. A TTL of 0 (default) means entries never expire.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *MemoryCache) { c.ttl = ttl }
}

// NewMemoryCache creates an in-memory result cache.
func NewMemoryCache(opts ...CacheOption) *MemoryCache {
	c := &MemoryCache{items: make(map[string]cacheEntry)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get implements Cache.
func (c *MemoryCache) Get(key string) (*AggregationResult, bool) {
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.res, true
}

// Set implements Cache.
func (c *MemoryCache) Set(key string, res *AggregationResult) {
	entry := cacheEntry{res: res}
	if c.ttl > 0 {
		entry.expiresAt = time.Now().Add(c.ttl)
	}
	c.mu.Lock()
	c.items[key] = entry
	c.mu.Unlock()
}

// Clear drops all entries.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	c.items = make(map[string]cacheEntry)
	c.mu.Unlock()
}
