package rerank

import (
	"context"
	"maps"
	"sync"

	"modmatch/internal/catalog"
)

// MemoryCache is a process-local matcher.RerankCache.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]map[catalog.EntryID]float64
}

// NewMemoryCache returns an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]map[catalog.EntryID]float64)}
}

// Get implements matcher.RerankCache.
func (c *MemoryCache) Get(_ context.Context, key string) (map[catalog.EntryID]float64, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	scores, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	return maps.Clone(scores), true, nil
}

// Put implements matcher.RerankCache.
func (c *MemoryCache) Put(_ context.Context, key string, scores map[catalog.EntryID]float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = maps.Clone(scores)
	return nil
}

// Len returns the number of cached keys.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
