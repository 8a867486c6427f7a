package signals

import "sync"

type cacheKey struct {
	folder string
	mode   Mode
}

// Cache memoizes signals per (folder, mode). It has no expiry; create one
// per batch and drop it when the batch ends.
type Cache struct {
	mu      sync.Mutex
	entries map[cacheKey]FolderSignals
	hits    int
	misses  int
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[cacheKey]FolderSignals)}
}

// Get returns cached signals for folder and mode.
func (c *Cache) Get(folder string, mode Mode) (FolderSignals, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sig, ok := c.entries[cacheKey{folder, mode}]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return sig, ok
}

// Put stores signals for folder and mode.
func (c *Cache) Put(folder string, mode Mode, sig FolderSignals) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{folder, mode}] = sig
}

// GetOrCollect returns cached signals or runs collect and stores its result.
// Concurrent callers for the same key may both collect; the result is the
// same either way.
func (c *Cache) GetOrCollect(folder string, mode Mode, collect func() FolderSignals) FolderSignals {
	if sig, ok := c.Get(folder, mode); ok {
		return sig
	}
	sig := collect()
	c.Put(folder, mode, sig)
	return sig
}

// Len returns the number of cached snapshots.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns hit and miss counts.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
