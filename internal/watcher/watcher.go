// Package watcher monitors project source files and triggers re-analysis
// after a quiet period.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"tserr/internal/config"
	tserrors "tserr/internal/errors"
)

// Event is one observed file change
type Event struct {
	Path      string
	Op        string // "create", "write", "remove", "rename"
	Timestamp time.Time
}

// BatchHandler receives the debounced change batch
type BatchHandler func(events []Event)

// Watcher recursively watches a project root with fsnotify and emits
// debounced batches of TypeScript file changes.
type Watcher struct {
	root      string
	cfg       config.WatchConfig
	project   *config.Project
	logger    *slog.Logger
	fs        *fsnotify.Watcher
	debouncer *batchDebouncer

	mu      sync.Mutex
	watched map[string]bool // directories currently watched
}

// New creates a watcher for the given project root. handler is invoked from
// the watcher goroutine after each quiet period.
func New(root string, cfg config.WatchConfig, project *config.Project, logger *slog.Logger, handler BatchHandler) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, tserrors.New(tserrors.InternalError, "creating fsnotify watcher", err)
	}

	w := &Watcher{
		root:    root,
		cfg:     cfg,
		project: project,
		logger:  logger,
		fs:      fsw,
		watched: make(map[string]bool),
	}
	w.debouncer = newBatchDebouncer(time.Duration(cfg.DebounceMs)*time.Millisecond, handler)
	return w, nil
}

// Start adds recursive watches and processes events until the context is
// cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addWatches(w.root); err != nil {
		w.fs.Close()
		return err
	}

	w.logger.Info("watching for changes",
		"root", w.root,
		"debounce_ms", w.cfg.DebounceMs,
		"directories", len(w.watched))

	defer w.fs.Close()
	defer w.debouncer.Cancel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// New directories need their own watch before any file inside them
	// produces events.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !w.excludedDir(event.Name) {
				if err := w.watchDir(event.Name); err != nil {
					w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
				}
			}
			return
		}
	}

	if !w.relevant(event.Name) {
		return
	}

	op := "write"
	switch {
	case event.Op.Has(fsnotify.Create):
		op = "create"
	case event.Op.Has(fsnotify.Remove):
		op = "remove"
	case event.Op.Has(fsnotify.Rename):
		op = "rename"
	case event.Op.Has(fsnotify.Write):
		op = "write"
	default:
		return // chmod-only events are noise
	}

	w.debouncer.Add(Event{Path: event.Name, Op: op, Timestamp: time.Now()})
}

// relevant reports whether a changed path should trigger re-analysis
func (w *Watcher) relevant(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range w.cfg.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}

	included := len(w.cfg.Include) == 0
	for _, pattern := range w.cfg.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			included = true
			break
		}
	}
	if !included {
		return false
	}

	if w.project != nil && !w.project.Matches(rel) {
		return false
	}
	return true
}

// excludedDir reports whether a directory subtree should not be watched
func (w *Watcher) excludedDir(dir string) bool {
	base := filepath.Base(dir)
	switch base {
	case "node_modules", ".git", "dist", "build", ".tserr":
		return true
	}
	return strings.HasPrefix(base, ".") && base != "."
}

func (w *Watcher) addWatches(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			w.logger.Warn("skipping unreadable path", "path", path, "error", err)
			return fs.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.excludedDir(path) {
			return fs.SkipDir
		}
		return w.watchDir(path)
	})
}

func (w *Watcher) watchDir(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watched[dir] {
		return nil
	}
	if err := w.fs.Add(dir); err != nil {
		return err
	}
	w.watched[dir] = true
	return nil
}

// Flush forces pending events out immediately. Used by tests and shutdown.
func (w *Watcher) Flush() {
	w.debouncer.Flush()
}
