package portal

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// responseCache keeps decoded GET responses for a short TTL and coalesces
// concurrent requests for the same key.
type responseCache struct {
	ttl   time.Duration
	now   func() time.Time
	group singleflight.Group

	mu         sync.Mutex
	entries    map[string]cacheEntry
	generation uint64
}

type cacheEntry struct {
	value    any
	storedAt time.Time
}

func newResponseCache(ttl time.Duration) *responseCache {
	return &responseCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// get returns the cached value for key or calls fetch, storing its result.
// A zero TTL disables storage but keeps request coalescing.
func (c *responseCache) get(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && c.now().Sub(e.storedAt) < c.ttl {
		c.mu.Unlock()
		return e.value, nil
	}
	gen := c.generation
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	// Results fetched before a clear must not repopulate the cache.
	if c.ttl > 0 && gen == c.generation {
		c.entries[key] = cacheEntry{value: v, storedAt: c.now()}
	}
	c.mu.Unlock()
	return v, nil
}

// clear drops every entry.
func (c *responseCache) clear() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.generation++
	c.mu.Unlock()
}

func (c *responseCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
