package texture

import (
	"image"
	"log/slog"
	"sync"

	"vr-vddc-renderer/internal/log"
)

// Resolver resolves a texture name to a decoded image.
type Resolver interface {
	Resolve(name string) *image.NRGBA
}

// Cache is a concurrency-safe texture cache.
type Cache struct {
	mu     sync.RWMutex
	items  map[string]*cacheEntry
	index  *Index
	logger *slog.Logger
}

type cacheEntry struct {
	img *image.NRGBA // nil if the load failed
}

// NewCache creates a new texture cache backed by the given index.
func NewCache(index *Index, logger *slog.Logger) *Cache {
	return &Cache{
		items:  make(map[string]*cacheEntry),
		index:  index,
		logger: log.Or(logger).With("component", "texture"),
	}
}

// Resolve loads and caches a texture by name. Returns nil if it is not
// indexed or fails to decode; failures are logged once.
func (c *Cache) Resolve(name string) *image.NRGBA {
	path, ok := c.index.ResolvePath(name)
	if !ok {
		return nil
	}

	// Fast path: read lock
	c.mu.RLock()
	if entry, exists := c.items[path]; exists {
		c.mu.RUnlock()
		return entry.img
	}
	c.mu.RUnlock()

	// Slow path: load from disk
	img, err := LoadTexture(path)

	// Write lock with double-check
	c.mu.Lock()
	if entry, exists := c.items[path]; exists {
		c.mu.Unlock()
		return entry.img
	}
	c.items[path] = &cacheEntry{img: img}
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("texture load failed", "name", name, "error", err)
	}
	return img
}

// Len returns the number of cached entries, failed loads included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
