// Package watch re-loads a clause file into a fresh *engine.Store whenever
// it changes on disk, debounced, and hands the new Store to a caller-
// supplied swap function instead of mutating the live store in place —
// so a query never observes a half-loaded file (spec §5). Grounded on
// theRebelliousNerd-codenerd's internal/core/mangle_watcher.go debounce-map
// pattern over github.com/fsnotify/fsnotify.
package watch

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"logicdb/pkg/engine"
)

// Watcher reloads path into a fresh Store on every settled write and passes
// it to onReload.
type Watcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	onReload func(*engine.Store)
	logger   *zap.Logger

	mu          sync.Mutex
	pendingSeen time.Time
	stopCh      chan struct{}
	doneCh      chan struct{}
}

// New watches path (a single clause file) for writes and calls onReload
// with a freshly loaded Store once changes have settled for debounce.
func New(path string, debounce time.Duration, onReload func(*engine.Store), logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{
		watcher:  fw,
		path:     path,
		debounce: debounce,
		onReload: onReload,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start runs the watch loop in a goroutine. Call Stop to end it.
func (w *Watcher) Start() {
	go w.run()
}

// Stop ends the watch loop and closes the underlying fsnotify watcher.
func (w *Watcher) Stop() {
	close(w.stopCh)
	<-w.doneCh
	w.watcher.Close()
}

func (w *Watcher) run() {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.mu.Lock()
			w.pendingSeen = time.Now()
			w.mu.Unlock()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))
		case <-ticker.C:
			w.maybeReload()
		}
	}
}

func (w *Watcher) maybeReload() {
	w.mu.Lock()
	seen := w.pendingSeen
	w.mu.Unlock()
	if seen.IsZero() || time.Since(seen) < w.debounce {
		return
	}
	w.mu.Lock()
	w.pendingSeen = time.Time{}
	w.mu.Unlock()

	f, err := os.Open(w.path)
	if err != nil {
		w.logger.Warn("reload: open failed", zap.String("path", w.path), zap.Error(err))
		return
	}
	defer f.Close()

	fresh := engine.NewStore()
	if err := fresh.Load(f); err != nil {
		w.logger.Warn("reload: load failed, keeping previous store", zap.String("path", w.path), zap.Error(err))
		return
	}
	w.logger.Info("reloaded clause file", zap.String("path", w.path))
	w.onReload(fresh)
}
