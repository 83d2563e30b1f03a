package watcher

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher calls a function after the watched file has changed. It watches
// the file's directory and filters by name, so editors that save by
// renaming a temporary file over the original are still seen.
//
// The callback runs on a timer goroutine. Callers owning single-threaded
// state forward the signal to their own goroutine, e.g. with
// tea.Program.Send.
type Watcher struct {
	path     string
	name     string
	onChange func()
	onError  func(error)
	debounce *Debouncer

	fsw    *fsnotify.Watcher
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	started bool
	changes int
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounceDuration sets the debounce window.
func WithDebounceDuration(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = NewDebouncer(d) }
}

// WithOnChange sets the change callback.
func WithOnChange(fn func()) Option {
	return func(w *Watcher) { w.onChange = fn }
}

// WithOnError sets the error callback. Without one, errors are logged.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// NewWatcher creates a watcher for path. Call Start to begin watching.
func NewWatcher(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve watch path: %w", err)
	}
	w := &Watcher{
		path:     abs,
		name:     filepath.Base(abs),
		debounce: NewDebouncer(0),
		onChange: func() {},
		onError: func(err error) {
			log.Printf("warning: file watcher: %v", err)
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		fsw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	w.fsw = fsw
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.done = make(chan struct{})
	w.started = true
	go w.watchLoop()
	return nil
}

// Stop stops watching and drops any pending callback. It is safe to call
// more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.started = false
	w.cancel()
	w.fsw.Close()
	done := w.done
	w.mu.Unlock()

	<-done
	w.debounce.Cancel()
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Changes returns the number of relevant events seen, before debouncing.
func (w *Watcher) Changes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.changes
}

func (w *Watcher) watchLoop() {
	defer close(w.done)
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.mu.Lock()
			w.changes++
			w.mu.Unlock()
			w.debounce.Trigger(w.onChange)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			// Errors are reported but don't stop the watcher
			w.onError(err)
		}
	}
}

// relevant reports whether event touches the watched file in a way that can
// change its content.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != w.name {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0
}
