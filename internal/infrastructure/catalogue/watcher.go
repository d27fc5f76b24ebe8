package catalogue

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/alchemorsel/discovery/internal/domain/recipe"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ReloadFunc receives every successfully reloaded catalogue
type ReloadFunc func(cat *recipe.Catalogue)

// Watcher reloads a catalogue file when it changes on disk. Bursts of
// events (editors often write, chmod and rename) collapse into one reload.
type Watcher struct {
	path     string
	loader   *Loader
	onReload ReloadFunc
	onError  func(err error)
	delay    time.Duration
	logger   *zap.Logger

	mu    sync.Mutex
	timer *time.Timer
}

// NewWatcher creates a watcher for path
func NewWatcher(path string, loader *Loader, delay time.Duration, onReload ReloadFunc, logger *zap.Logger) *Watcher {
	if delay <= 0 {
		delay = 250 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		path:     filepath.Clean(path),
		loader:   loader,
		onReload: onReload,
		delay:    delay,
		logger:   logger.Named("catalogue-watcher"),
	}
}

// OnError registers a callback for rejected reloads
func (w *Watcher) OnError(fn func(err error)) {
	w.onError = fn
}

// Run watches until ctx is cancelled
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fsw.Close()

	// Watch the directory: atomic saves replace the file and drop a direct watch
	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.logger.Info("Watching catalogue", zap.String("path", w.path))

	defer w.stopTimer()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.schedule()
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("File watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.reload)
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) reload() {
	cat, err := w.loader.Load(w.path)
	if err != nil {
		// Keep serving the previous catalogue
		w.logger.Error("Catalogue reload failed", zap.String("path", w.path), zap.Error(err))
		if w.onError != nil {
			w.onError(err)
		}
		return
	}
	w.onReload(cat)
}
