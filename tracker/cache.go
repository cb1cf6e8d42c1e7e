package tracker

import (
	"context"
	"sync"
)

// MemoryCache is an in-process Cache. The editor uses the SQLite-backed
// cache in production; MemoryCache serves tests and cache-less embedding.
type MemoryCache struct {
	mu    sync.Mutex
	batch Batch
}

// NewMemoryCache returns an empty in-memory cache.
func NewMemoryCache() *MemoryCache { return &MemoryCache{} }

// SaveBatch merges b over the stored batch, so successive flushes
// accumulate per-element state the way the durable cache does.
func (c *MemoryCache) SaveBatch(_ context.Context, b Batch) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.batch == nil {
		c.batch = make(Batch)
	}
	for id, u := range b {
		c.batch[id] = u
	}
	return nil
}

// LoadBatch returns the stored batch (possibly empty, never nil error).
func (c *MemoryCache) LoadBatch(_ context.Context) (Batch, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(Batch, len(c.batch))
	for id, u := range c.batch {
		out[id] = u
	}
	return out, nil
}

// Clear empties the cache.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batch = nil
	return nil
}
