// Package watcher reacts to changes of a project file on disk.
//
// `carbon watch` uses it to re-export a project whenever it is saved, by this
// tool or any other.
package watcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors one project file and calls back after it settles.
type Watcher struct {
	path string
	dir  string

	// Configuration
	debounceDelay time.Duration
	log           *slog.Logger

	// Internal state
	watching chan struct{}
	pending  time.Time
	mu       sync.Mutex

	onChange func(ctx context.Context, path string) error
}

// Config holds configuration options for the Watcher.
type Config struct {
	ProjectPath   string
	DebounceDelay time.Duration // Default: 100ms
	Logger        *slog.Logger
	OnChange      func(ctx context.Context, path string) error
}

// New creates a new Watcher with the given configuration.
func New(cfg Config) (*Watcher, error) {
	if cfg.ProjectPath == "" {
		return nil, fmt.Errorf("project path is required")
	}
	if cfg.OnChange == nil {
		return nil, fmt.Errorf("change callback is required")
	}

	abs, err := filepath.Abs(cfg.ProjectPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", cfg.ProjectPath, err)
	}

	debounce := cfg.DebounceDelay
	if debounce == 0 {
		debounce = 100 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Watcher{
		path:          abs,
		dir:           filepath.Dir(abs),
		debounceDelay: debounce,
		log:           logger,
		watching:      make(chan struct{}),
		onChange:      cfg.OnChange,
	}, nil
}

// Start watches until ctx is cancelled. A Watcher can be started once.
//
// The directory is watched rather than the file itself because editors and
// atomic writers replace the file, which would drop a file watch.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.log.Debug("watching project", "path", w.path)
	close(w.watching)

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", "err", err)
		}
	}
}

// Watching is closed once the watch is registered.
func (w *Watcher) Watching() <-chan struct{} { return w.watching }

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	w.log.Debug("project changed", "op", event.Op.String())

	w.mu.Lock()
	w.pending = time.Now()
	w.mu.Unlock()
}

// processDebounced fires the callback once the file has been quiet for the
// debounce delay.
func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(w.debounceDelay / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if w.ready() {
				if err := w.onChange(ctx, w.path); err != nil {
					w.log.Error("failed to process change", "path", w.path, "err", err)
				}
			}
		}
	}
}

func (w *Watcher) ready() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.pending.IsZero() || time.Since(w.pending) < w.debounceDelay {
		return false
	}
	w.pending = time.Time{}
	return true
}
