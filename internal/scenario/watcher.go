package scenario

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeCallback is called with the path of a scenario file after it changed
type ChangeCallback func(path string)

// Watcher monitors scenario files and reports changes after a quiet period
type Watcher struct {
	watcher  *fsnotify.Watcher
	callback ChangeCallback
	debounce time.Duration

	// Watched files, keyed by cleaned absolute path
	files map[string]struct{}

	pending map[string]struct{}
	timer   *time.Timer
	mu      sync.Mutex

	cancel context.CancelFunc
}

// NewWatcher creates a new watcher for scenario files
func NewWatcher(callback ChangeCallback) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:  watcher,
		callback: callback,
		debounce: 300 * time.Millisecond, // editors write in bursts
		files:    make(map[string]struct{}),
		pending:  make(map[string]struct{}),
	}, nil
}

// AddFile starts watching path. The parent directory is watched so that
// editors replacing the file atomically are still noticed.
func (w *Watcher) AddFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.files[abs]; exists {
		return nil
	}
	if err := w.watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	w.files[abs] = struct{}{}
	return nil
}

// Start begins watching for file changes
func (w *Watcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				w.handleEvent(event)
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[watcher] %v", err)
			}
		}
	}()
}

// Stop stops watching for file changes
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	w.watcher.Close()
}

// SetDebounce sets the quiet period before a change is reported
func (w *Watcher) SetDebounce(d time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.debounce = d
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	name, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if _, watched := w.files[name]; !watched {
		return
	}
	w.pending[name] = struct{}{}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	pending := w.pending
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	if w.callback == nil {
		return
	}
	for path := range pending {
		w.callback(path)
	}
}
