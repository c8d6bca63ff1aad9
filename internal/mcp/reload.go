package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the reloader waits after the last change.
const DefaultDebounce = 500 * time.Millisecond

// Reloadable is anything that can rebuild itself from disk.
type Reloadable interface {
	Reload() error
}

// Reloader watches config, rule and skill paths and triggers hot reload.
type Reloader struct {
	watcher  *fsnotify.Watcher
	target   Reloadable
	paths    []string
	logger   *slog.Logger
	Debounce time.Duration
}

// NewReloader creates a file watcher for the given paths. Paths that do not
// exist are skipped. A directory is watched together with its immediate
// subdirectories, so edits to <dir>/<skill>/SKILL.md are seen.
func NewReloader(target Reloadable, paths []string, logger *slog.Logger) (*Reloader, error) {
	if logger == nil {
		logger = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	var watched []string
	add := func(p string) error {
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %q: %w", p, err)
		}
		watched = append(watched, p)
		return nil
	}

	for _, p := range paths {
		if p == "" {
			continue
		}
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if err := add(p); err != nil {
			watcher.Close()
			return nil, err
		}
		if !info.IsDir() {
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			continue
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			if err := add(filepath.Join(p, e.Name())); err != nil {
				watcher.Close()
				return nil, err
			}
		}
	}

	return &Reloader{
		watcher:  watcher,
		target:   target,
		paths:    watched,
		logger:   logger,
		Debounce: DefaultDebounce,
	}, nil
}

// Paths returns every path actually being watched.
func (r *Reloader) Paths() []string {
	return r.paths
}

// Run watches for file changes and reloads. Blocks until ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	defer r.watcher.Close()

	var debounce *time.Timer

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return nil

		case event, ok := <-r.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(r.Debounce, func() {
				if err := r.target.Reload(); err != nil {
					r.logger.Error("hot-reload failed, keeping previous gates", "error", err)
				} else {
					r.logger.Info("hot-reload: gates rebuilt", "trigger", event.Name)
				}
			})

		case err, ok := <-r.watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("file watcher error", "error", err)
		}
	}
}
