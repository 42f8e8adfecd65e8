// ABOUTME: In-memory export cache wrapping a RenderFunc with sha256-keyed, TTL-expiring entries.
// ABOUTME: Safe for concurrent use; failed renders are never cached.
package export

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// RenderFunc produces an export for a request. Render satisfies it.
type RenderFunc func(ctx context.Context, req Request) ([]byte, error)

type cacheEntry struct {
	data      []byte
	createdAt time.Time
}

// Cache memoises a RenderFunc. Keys are the sha256 of the request's JSON form,
// in which map keys are sorted, so equal requests share an entry.
type Cache struct {
	renderFn RenderFunc
	ttl      time.Duration
	entries  map[string]*cacheEntry
	mu       sync.RWMutex
}

// NewCache wraps renderFn; entries expire after ttl.
func NewCache(renderFn RenderFunc, ttl time.Duration) *Cache {
	return &Cache{
		renderFn: renderFn,
		ttl:      ttl,
		entries:  make(map[string]*cacheEntry),
	}
}

// Render returns a cached export when one is fresh, otherwise renders and stores it.
// Requests that cannot be keyed (values that do not encode as JSON) bypass the cache.
func (c *Cache) Render(ctx context.Context, req Request) ([]byte, error) {
	key, ok := cacheKey(req)
	if !ok {
		return c.renderFn(ctx, req)
	}

	c.mu.RLock()
	if entry, hit := c.entries[key]; hit && time.Since(entry.createdAt) < c.ttl {
		data := entry.data
		c.mu.RUnlock()
		return data, nil
	}
	c.mu.RUnlock()

	data, err := c.renderFn(ctx, req)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = &cacheEntry{data: data, createdAt: time.Now()}
	c.mu.Unlock()
	return data, nil
}

// Len returns the number of entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
}

// Prune removes expired entries and returns how many were dropped.
func (c *Cache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.entries {
		if time.Since(e.createdAt) >= c.ttl {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

func cacheKey(req Request) (string, bool) {
	if format, err := ParseFormat(string(req.Format)); err == nil {
		req.Format = format
	}
	b, err := json.Marshal(req)
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%x", sha256.Sum256(b)), true
}
