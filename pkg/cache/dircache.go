// Package cache provides the in-memory directory listing cache used by the navigator.
package cache

import (
	"sync"

	"github.com/feishukit/feishukit/internal/metrics"
	"github.com/feishukit/feishukit/pkg/models"
)

// DirCache maps a parent key to its ordered child listing. Entries never
// expire; they live until invalidated or the cache is cleared.
type DirCache struct {
	mode models.Mode

	mu      sync.RWMutex
	entries map[string][]models.Descriptor
	hits    int
	misses  int
}

// Stats is a snapshot of cache usage.
type Stats struct {
	Mode    models.Mode
	Entries int
	Hits    int
	Misses  int
}

// New creates an empty cache for one mode.
func New(mode models.Mode) *DirCache {
	return &DirCache{
		mode:    mode,
		entries: make(map[string][]models.Descriptor),
	}
}

// Get returns the cached listing for key.
func (c *DirCache) Get(key string) ([]models.Descriptor, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	children, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	metrics.RecordCacheLookup(string(c.mode), ok)
	return children, ok
}

// Peek returns the cached listing without counting a lookup.
func (c *DirCache) Peek(key string) ([]models.Descriptor, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	children, ok := c.entries[key]
	return children, ok
}

// Put replaces the listing for key.
func (c *DirCache) Put(key string, children []models.Descriptor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = children
}

// Invalidate drops the listing for each key. Missing keys are ignored.
func (c *DirCache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		if _, ok := c.entries[key]; ok {
			delete(c.entries, key)
			metrics.RecordCacheInvalidation(string(c.mode))
		}
	}
}

// Has reports whether key is cached.
func (c *DirCache) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[key]
	return ok
}

// Clear removes all entries and returns how many were dropped.
func (c *DirCache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[string][]models.Descriptor)
	return n
}

// Stats returns usage counters.
func (c *DirCache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stats{Mode: c.mode, Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}
