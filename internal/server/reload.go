package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ppiankov/taskgate/internal/config"
	"github.com/ppiankov/taskgate/internal/denylist"
	"github.com/ppiankov/taskgate/internal/dispatch"
)

// debounce is how long the watcher waits after the last write.
const debounce = 500 * time.Millisecond

// ConfigReloader rebuilds the classifier and guard from the config file and
// swaps them into a running dispatcher.
type ConfigReloader struct {
	path   string
	d      *dispatch.Dispatcher
	runner DenylistSetter
	logger *slog.Logger
}

// DenylistSetter is a subprocess runner whose vocabulary follows the guard's.
type DenylistSetter interface {
	SetDenylist(dl *denylist.Denylist)
}

// NewConfigReloader creates a reloader for the config at path.
func NewConfigReloader(path string, d *dispatch.Dispatcher, logger *slog.Logger) *ConfigReloader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ConfigReloader{path: path, d: d, logger: logger}
}

// WithRunner makes each successful reload push the new denylist to r.
func (c *ConfigReloader) WithRunner(r DenylistSetter) *ConfigReloader {
	c.runner = r
	return c
}

// Reload loads the config and swaps in the new classifier and guard. The
// data root is fixed for the life of the process.
func (c *ConfigReloader) Reload() error {
	cfg, hash, err := config.LoadWithHash(c.path)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}

	root := c.d.Guard().Root()
	if cfg.Root() != root {
		c.logger.Warn("data_root change ignored until restart", "configured", cfg.Root(), "active", root)
	}

	cl, g, err := dispatch.Components(cfg, root)
	if err != nil {
		return err
	}
	if err := c.d.Swap(cl, g); err != nil {
		return err
	}
	if c.runner != nil {
		c.runner.SetDenylist(g.Denylist())
	}
	c.logger.Info("config reloaded", "path", c.path, "hash", hash)
	return nil
}

// Reloader watches config and denylist files and calls reload after changes.
// It watches the parent directories, so files replaced by rename are still
// seen.
type Reloader struct {
	watcher *fsnotify.Watcher
	reload  func() error
	logger  *slog.Logger
	paths   []string
	files   map[string]bool
}

// NewReloader creates a file watcher for the given paths. Empty and missing
// paths are skipped.
func NewReloader(reload func() error, paths []string, logger *slog.Logger) (*Reloader, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	r := &Reloader{
		watcher: watcher,
		reload:  reload,
		logger:  logger,
		files:   make(map[string]bool),
	}
	dirs := make(map[string]bool)
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			continue
		}
		if r.files[abs] {
			continue
		}
		dir := filepath.Dir(abs)
		if !dirs[dir] {
			if err := watcher.Add(dir); err != nil {
				_ = watcher.Close()
				return nil, fmt.Errorf("failed to watch %q: %w", dir, err)
			}
			dirs[dir] = true
		}
		r.files[abs] = true
		r.paths = append(r.paths, p)
	}
	return r, nil
}

// Paths returns the files actually being watched.
func (r *Reloader) Paths() []string {
	return r.paths
}

// Run watches for file changes and reloads. Blocks until ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer func() { _ = r.watcher.Close() }()

	var timer *time.Timer

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if !r.files[filepath.Clean(event.Name)] {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, func() {
					if err := r.reload(); err != nil {
						r.logger.Error("hot-reload failed", "error", err)
					}
				})
			}

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("file watcher error", "error", err)
		}
	}
}
