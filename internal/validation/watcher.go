package validation

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"strapimcp/pkg/logging"
)

// reloadDebounce is the time to wait after the last file event before
// reloading, coalescing editor save bursts into one reload.
const reloadDebounce = 500 * time.Millisecond

// Watcher reloads the engine's rule table when the rule file changes on
// disk. Only started in dev mode; production deployments restart to pick up
// rule changes.
type Watcher struct {
	mu      sync.Mutex
	engine  *Engine
	fs      *fsnotify.Watcher
	stopCh  chan struct{}
	running bool

	debounceMu    sync.Mutex
	debounceTimer *time.Timer
}

// NewWatcher builds a watcher for the engine's rule file.
func NewWatcher(engine *Engine) *Watcher {
	return &Watcher{engine: engine}
}

// Start begins watching the rule file's directory. A rename-and-replace save
// (the common editor pattern) removes the watched inode, so the directory is
// watched and events are filtered by file name.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running || w.engine.Path() == "" {
		return nil
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fs.Add(filepath.Dir(w.engine.Path())); err != nil {
		fs.Close()
		return err
	}

	w.fs = fs
	w.stopCh = make(chan struct{})
	w.running = true

	go w.processEvents(fs.Events, fs.Errors)

	logging.Info("Validation", "Watching %s for rule changes", w.engine.Path())
	return nil
}

func (w *Watcher) processEvents(events <-chan fsnotify.Event, errors <-chan error) {
	target := filepath.Base(w.engine.Path())
	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logging.Debug("Validation", "Rule file changed: %s", event.Name)
			w.triggerReloadDebounced()

		case err, ok := <-errors:
			if !ok {
				return
			}
			logging.Error("Validation", err, "fsnotify error")
		}
	}
}

func (w *Watcher) triggerReloadDebounced() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(reloadDebounce, func() {
		w.mu.Lock()
		running := w.running
		w.mu.Unlock()
		if !running {
			return
		}
		if err := w.engine.Reload(); err != nil {
			logging.Warn("Validation", "Rule reload failed, keeping previous rules: %v", err)
		}
	})
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	w.running = false
	close(w.stopCh)

	w.debounceMu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMu.Unlock()

	if w.fs != nil {
		if err := w.fs.Close(); err != nil {
			logging.Warn("Validation", "Error closing fsnotify watcher: %v", err)
		}
		w.fs = nil
	}
}
