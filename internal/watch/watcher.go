// Package watch observes a directory of avatar images and reports
// changes so callers can invalidate cached extraction results.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"

	imageutil "github.com/jmylchreest/avatint/internal/image"
)

// DefaultDebounce is how long a path must stay quiet before its change
// is reported. Editors and download tools write files in bursts.
const DefaultDebounce = 500 * time.Millisecond

// Op describes what happened to a watched avatar.
type Op int

const (
	// OpChanged means the file was created or its contents changed.
	OpChanged Op = iota
	// OpRemoved means the file was deleted or renamed away.
	OpRemoved
)

// Event is a single avatar change notification.
type Event struct {
	Path string
	Op   Op
}

// Watcher is the interface for avatar watching implementations.
type Watcher interface {
	// Watch starts watching and delivers events until Close.
	Watch() error

	// Events returns the channel change notifications arrive on.
	Events() <-chan Event

	// Close stops watching and releases resources.
	Close() error
}

// New builds a watcher for a directory, preferring fsnotify and falling
// back to polling where the platform watcher cannot be created.
func New(dir string, debounce time.Duration, logger hclog.Logger) (Watcher, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("cannot watch %s: not a directory", dir)
	}

	fw, err := newFsnotifyWatcher(dir, debounce, logger)
	if err != nil {
		logger.Warn("fsnotify unavailable, falling back to polling", "error", err)
		return newPollingWatcher(dir, debounce, logger), nil
	}
	return fw, nil
}

// fsnotifyWatcher delivers debounced change events via fsnotify.
type fsnotifyWatcher struct {
	dir      string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   hclog.Logger
	events   chan Event

	mu      sync.Mutex
	pending map[string]time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

func newFsnotifyWatcher(dir string, debounce time.Duration, logger hclog.Logger) (*fsnotifyWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &fsnotifyWatcher{
		dir:      dir,
		watcher:  watcher,
		debounce: debounce,
		logger:   logger.Named("watch"),
		events:   make(chan Event, 16),
		pending:  make(map[string]time.Time),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Watch starts the event and debounce goroutines.
func (w *fsnotifyWatcher) Watch() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	go w.processEvents()
	go w.flushLoop()
	return nil
}

// Events returns the notification channel.
func (w *fsnotifyWatcher) Events() <-chan Event { return w.events }

// Close stops the watcher.
func (w *fsnotifyWatcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}

// processEvents folds raw fsnotify events into the pending map; removals
// bypass the debounce since there is nothing further to wait for.
func (w *fsnotifyWatcher) processEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !imageutil.IsImageFile(event.Name) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.mu.Lock()
				w.pending[event.Name] = time.Now()
				w.mu.Unlock()
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				w.mu.Lock()
				delete(w.pending, event.Name)
				w.mu.Unlock()
				w.deliver(Event{Path: event.Name, Op: OpRemoved})
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err)
		}
	}
}

// flushLoop periodically reports pending paths that have stayed quiet
// for the debounce interval.
func (w *fsnotifyWatcher) flushLoop() {
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			for _, path := range flushPending(&w.mu, w.pending, w.debounce, time.Now()) {
				w.deliver(Event{Path: path, Op: OpChanged})
			}
		}
	}
}

// deliver sends an event without blocking forever on a stalled consumer.
func (w *fsnotifyWatcher) deliver(ev Event) {
	select {
	case w.events <- ev:
	case <-w.ctx.Done():
	}
}

// flushPending removes and returns all pending paths whose last change
// is at least debounce old. Split out so the debounce behaviour is
// testable without a filesystem.
func flushPending(mu *sync.Mutex, pending map[string]time.Time, debounce time.Duration, now time.Time) []string {
	mu.Lock()
	defer mu.Unlock()

	var ready []string
	for path, last := range pending {
		if now.Sub(last) >= debounce {
			ready = append(ready, path)
			delete(pending, path)
		}
	}
	return ready
}

// pollingWatcher is the fallback for platforms where fsnotify cannot be
// used. It scans the directory on an interval and diffs modification
// times.
type pollingWatcher struct {
	dir      string
	interval time.Duration
	logger   hclog.Logger
	events   chan Event

	seen map[string]time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

func newPollingWatcher(dir string, interval time.Duration, logger hclog.Logger) *pollingWatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &pollingWatcher{
		dir:      dir,
		interval: interval,
		logger:   logger.Named("watch"),
		events:   make(chan Event, 16),
		seen:     make(map[string]time.Time),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Watch primes the baseline scan and starts polling.
func (w *pollingWatcher) Watch() error {
	w.seen = w.scan()
	go w.pollLoop()
	return nil
}

// Events returns the notification channel.
func (w *pollingWatcher) Events() <-chan Event { return w.events }

// Close stops polling.
func (w *pollingWatcher) Close() error {
	w.cancel()
	return nil
}

func (w *pollingWatcher) pollLoop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			current := w.scan()
			for path, mod := range current {
				if prev, ok := w.seen[path]; !ok || mod.After(prev) {
					w.deliver(Event{Path: path, Op: OpChanged})
				}
			}
			for path := range w.seen {
				if _, ok := current[path]; !ok {
					w.deliver(Event{Path: path, Op: OpRemoved})
				}
			}
			w.seen = current
		}
	}
}

// scan returns modification times for every image file in the directory.
func (w *pollingWatcher) scan() map[string]time.Time {
	result := make(map[string]time.Time)

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.logger.Warn("poll scan failed", "error", err)
		return result
	}

	for _, entry := range entries {
		if entry.IsDir() || !imageutil.IsImageFile(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		result[filepath.Join(w.dir, entry.Name())] = info.ModTime()
	}
	return result
}

func (w *pollingWatcher) deliver(ev Event) {
	select {
	case w.events <- ev:
	case <-w.ctx.Done():
	}
}
