package assembler

import (
	"sync"

	"cotflow/internal/models"
)

// Cache holds at most one published snapshot under an explicit key. The
// next publish invalidates the previous snapshot wholesale; nothing is
// ever silently stale beyond one run's lifetime.
type Cache struct {
	mu       sync.RWMutex
	snapshot *models.Snapshot
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Publish replaces the cached snapshot.
func (c *Cache) Publish(s *models.Snapshot) {
	c.mu.Lock()
	c.snapshot = s
	c.mu.Unlock()
}

// Get returns the snapshot currently cached under key, or nil when the
// key does not match (a previous run's key never serves a new request).
func (c *Cache) Get(key string) *models.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot == nil || c.snapshot.Key != key {
		return nil
	}
	return c.snapshot
}

// Latest returns the most recently published snapshot regardless of key,
// or nil when nothing has been published yet.
func (c *Cache) Latest() *models.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Invalidate drops the cached snapshot.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.snapshot = nil
	c.mu.Unlock()
}
