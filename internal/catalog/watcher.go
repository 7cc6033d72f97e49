package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"quiver/pkg/logging"
)

// DefaultDebounce is how long the watcher waits for a file to settle.
const DefaultDebounce = 250 * time.Millisecond

type operation int

const (
	opApply operation = iota
	opRemove
)

// Watcher keeps a Catalog in sync with its directory using fsnotify.
// Writes and creates re-register a file's entry; removes and renames
// unregister it.
type Watcher struct {
	mu sync.Mutex

	dir      string
	catalog  *Catalog
	debounce time.Duration

	watcher *fsnotify.Watcher
	pending map[string]*time.Timer
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher for dir. A zero debounce selects DefaultDebounce.
func NewWatcher(dir string, c *Catalog, debounce time.Duration) *Watcher {
	if debounce == 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		dir:      dir,
		catalog:  c,
		debounce: debounce,
		pending:  make(map[string]*time.Timer),
	}
}

// Start begins watching. It returns once the watch is installed; events are
// processed in the background until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return err
	}

	w.watcher = fsw
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})

	go w.processEvents(ctx, fsw, w.stopCh, w.doneCh)

	logging.Info("Catalog", "Watching %s for catalog changes", w.dir)
	return nil
}

// Stop ends watching and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	close(w.stopCh)
	done := w.doneCh
	w.mu.Unlock()

	<-done
}

func (w *Watcher) processEvents(ctx context.Context, fsw *fsnotify.Watcher, stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	defer fsw.Close()
	defer w.cleanupPending()

	for {
		select {
		case <-ctx.Done():
			return

		case <-stopCh:
			return

		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleFsEvent(event)

		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logging.Error("Catalog", err, "Filesystem watcher error")
		}
	}
}

func (w *Watcher) handleFsEvent(event fsnotify.Event) {
	if !IsCatalogFile(event.Name) {
		return
	}

	var op operation
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create, event.Op&fsnotify.Write == fsnotify.Write:
		op = opApply
	case event.Op&fsnotify.Remove == fsnotify.Remove, event.Op&fsnotify.Rename == fsnotify.Rename:
		// the new name of a rename arrives as its own Create
		op = opRemove
	default:
		return
	}

	w.schedule(filepath.Clean(event.Name), op)
}

// schedule debounces per path; the last operation within the window wins.
func (w *Watcher) schedule(path string, op operation) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.apply(path, op)
	})
}

func (w *Watcher) apply(path string, op operation) {
	switch op {
	case opApply:
		if err := w.catalog.ApplyFile(path); err != nil {
			logging.Warn("Catalog", "Failed to reload %s: %v", path, err)
		}
	case opRemove:
		if err := w.catalog.Remove(path); err != nil {
			logging.Warn("Catalog", "Failed to remove %s: %v", path, err)
		}
	}
}

func (w *Watcher) cleanupPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}
