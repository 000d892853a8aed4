package collection

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch keeps the cache in step with the root tree until ctx is cancelled.
// A changed document is evicted and decoded again on its next Get; created
// documents join later Paths snapshots and removed ones leave them.
// ready, when non-nil, is closed once every directory is being watched.
func (c *Cache) Watch(ctx context.Context, ready chan<- struct{}) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, c.root); err != nil {
		return err
	}
	if ready != nil {
		close(ready)
	}

	c.logger.Info("collection: watching", zap.String("root", c.root))

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("collection: watch stopped")
			return nil

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.logger.Warn("collection: watcher error", zap.Error(err))

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			c.handle(w, ev)
		}
	}
}

func (c *Cache) handle(w *fsnotify.Watcher, ev fsnotify.Event) {
	path := ev.Name

	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := addDirsRecursive(w, path); err != nil {
				c.logger.Warn("collection: watch new dir failed", zap.String("path", path), zap.Error(err))
			}
			c.indexDir(path)
			return
		}
	}

	if !c.matches(path) {
		return
	}

	switch {
	case ev.Op&fsnotify.Create != 0:
		if c.addPath(path) {
			c.logger.Debug("collection: added", zap.String("path", path))
		}
		c.Evict(path)
	case ev.Op&fsnotify.Write != 0:
		c.Evict(path)
		c.logger.Debug("collection: invalidated", zap.String("path", path))
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		if c.removePath(path) {
			c.logger.Debug("collection: removed", zap.String("path", path))
		}
		c.fills.Forget(path)
	}
}

// indexDir adds documents already present in a directory that appeared
// after Open.
func (c *Cache) indexDir(dir string) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !c.matches(path) {
			return nil
		}
		c.addPath(path)
		return nil
	})
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
