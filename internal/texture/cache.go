// Package texture resolves surface texture names to decoded images.
package texture

import (
	"image"
	"sync"

	"go.uber.org/zap"
)

// Resolver resolves a texture name to a decoded RGBA image.
type Resolver interface {
	Resolve(name string) *image.NRGBA
}

// Cache is a concurrency-safe texture cache.
type Cache struct {
	mu     sync.RWMutex
	items  map[string]*image.NRGBA // nil value: load failed
	index  *Index
	logger *zap.Logger
}

// NewCache creates a texture cache backed by index. logger may be nil.
func NewCache(index *Index, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		items:  make(map[string]*image.NRGBA),
		index:  index,
		logger: logger,
	}
}

// Resolve loads and caches a texture by name. Returns nil if the name is
// unknown or the file cannot be decoded; failures are remembered.
func (c *Cache) Resolve(name string) *image.NRGBA {
	path, ok := c.index.ResolvePath(name)
	if !ok {
		return nil
	}

	// Fast path: read lock
	c.mu.RLock()
	if img, exists := c.items[path]; exists {
		c.mu.RUnlock()
		return img
	}
	c.mu.RUnlock()

	img, err := LoadTexture(path)
	if err != nil {
		c.logger.Warn("texture: load failed", zap.String("path", path), zap.Error(err))
		img = nil
	}

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, exists := c.items[path]; exists {
		return existing
	}
	c.items[path] = img
	return img
}
