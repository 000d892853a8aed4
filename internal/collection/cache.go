// Package collection locates SNO documents under a root directory and decodes
// them on demand, memoizing one document per path.
package collection

import (
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"sno-scene-tools/internal/sno"
)

// DefaultExtension is the file extension of SNO scene documents.
const DefaultExtension = ".scn"

// DecodeFunc decodes the document stored at path.
type DecodeFunc func(path string) (*sno.Document, error)

// Option configures a Cache.
type Option func(*Cache)

// WithExtension sets the extension used to discover documents.
// Matching is case-insensitive; the leading dot is optional.
func WithExtension(ext string) Option {
	return func(c *Cache) {
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.ext = strings.ToLower(ext)
	}
}

// WithDecoder replaces the decode step, mainly for tests.
func WithDecoder(fn DecodeFunc) Option {
	return func(c *Cache) {
		c.decode = fn
	}
}

// WithDecodeOptions passes options to sno.DecodeFile.
func WithDecodeOptions(opts ...sno.Option) Option {
	return func(c *Cache) {
		c.decodeOpts = opts
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) {
		c.logger = l
	}
}

// Cache is a concurrency-safe, memoizing document cache.
// Concurrent first lookups of one path share a single decode.
type Cache struct {
	root       string
	ext        string
	decode     DecodeFunc
	decodeOpts []sno.Option
	logger     *zap.Logger

	mu    sync.RWMutex
	paths []string // sorted
	docs  map[string]*sno.Document
	gens  map[string]uint64 // bumped on evict; a fill stores only if unchanged

	fills singleflight.Group
}

// Open indexes every document under root. Nothing is decoded yet.
func Open(root string, opts ...Option) (*Cache, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("collection: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("collection: root is not a directory: %s", root)
	}

	c := &Cache{
		root:   root,
		ext:    DefaultExtension,
		docs:   make(map[string]*sno.Document),
		gens:   make(map[string]uint64),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.decode == nil {
		c.decode = func(path string) (*sno.Document, error) {
			return sno.DecodeFile(path, c.decodeOpts...)
		}
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !c.matches(path) {
			return nil
		}
		c.paths = append(c.paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collection: walk %s: %w", root, err)
	}
	slices.Sort(c.paths)

	c.logger.Debug("collection: indexed",
		zap.String("root", root),
		zap.String("extension", c.ext),
		zap.Int("documents", len(c.paths)))
	return c, nil
}

func (c *Cache) matches(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == c.ext
}

// Root returns the directory the cache was opened on.
func (c *Cache) Root() string { return c.root }

// Len returns the number of known paths.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.paths)
}

// Paths returns the known paths in sorted order. Each call to the returned
// sequence restarts from the snapshot taken when Paths was called.
func (c *Cache) Paths() iter.Seq[string] {
	c.mu.RLock()
	snapshot := slices.Clone(c.paths)
	c.mu.RUnlock()

	return func(yield func(string) bool) {
		for _, p := range snapshot {
			if !yield(p) {
				return
			}
		}
	}
}

// Get returns the document at path, decoding it on first use.
// A failed decode is not cached and does not touch other entries.
func (c *Cache) Get(path string) (*sno.Document, error) {
	c.mu.RLock()
	doc, ok := c.docs[path]
	c.mu.RUnlock()
	if ok {
		return doc, nil
	}

	v, err, _ := c.fills.Do(path, func() (any, error) {
		c.mu.RLock()
		doc, ok := c.docs[path]
		gen := c.gens[path]
		c.mu.RUnlock()
		if ok {
			return doc, nil
		}

		doc, err := c.decode(path)
		if err != nil {
			c.logger.Debug("collection: decode failed", zap.String("path", path), zap.Error(err))
			return nil, err
		}

		c.mu.Lock()
		stale := c.gens[path] != gen
		if !stale {
			c.docs[path] = doc
		}
		c.mu.Unlock()
		if stale {
			c.logger.Debug("collection: evicted during decode", zap.String("path", path))
		} else {
			c.logger.Debug("collection: decoded", zap.String("path", path))
		}
		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*sno.Document), nil
}

// Cached reports whether path has a decoded document.
func (c *Cache) Cached(path string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.docs[path]
	return ok
}

// Evict drops the decoded document for path, if any. A decode already in
// flight for path still answers its callers but is not cached.
func (c *Cache) Evict(path string) {
	c.mu.Lock()
	delete(c.docs, path)
	c.gens[path]++
	c.mu.Unlock()
	c.fills.Forget(path)
}

func (c *Cache) addPath(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, found := slices.BinarySearch(c.paths, path)
	if found {
		return false
	}
	c.paths = slices.Insert(c.paths, i, path)
	return true
}

func (c *Cache) removePath(path string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.docs, path)
	c.gens[path]++
	i, found := slices.BinarySearch(c.paths, path)
	if !found {
		return false
	}
	c.paths = slices.Delete(c.paths, i, i+1)
	return true
}
