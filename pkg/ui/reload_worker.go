package ui

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/xlist/pkg/loader"
	"github.com/vanderheijden86/xlist/pkg/model"
	"github.com/vanderheijden86/xlist/pkg/watcher"
)

// ReloadMsg carries freshly loaded recipes into the UI goroutine.
type ReloadMsg struct {
	Recipes []*model.Recipe
}

// ReloadErrorMsg is sent when reloading the data file fails.
type ReloadErrorMsg struct {
	Err         error
	Recoverable bool // true if the next file change may fix it
}

// WorkerState represents the current state of the reload worker.
type WorkerState int

const (
	// WorkerIdle means the worker is waiting for file changes.
	WorkerIdle WorkerState = iota
	// WorkerProcessing means the worker is loading the data file.
	WorkerProcessing
	// WorkerStopped means the worker has been stopped.
	WorkerStopped
)

// WorkerError wraps errors with phase and retry context.
type WorkerError struct {
	Phase   string
	Cause   error
	Time    time.Time
	Retries int // consecutive failures including this one
}

func (e WorkerError) Error() string {
	return fmt.Sprintf("%s failed: %v (retries: %d)", e.Phase, e.Cause, e.Retries)
}

func (e WorkerError) Unwrap() error {
	return e.Cause
}

// WorkerConfig configures the ReloadWorker.
type WorkerConfig struct {
	DataPath      string
	DebounceDelay time.Duration
	Program       *tea.Program
	// Send overrides Program.Send, mainly for tests.
	Send func(tea.Msg)
}

// ReloadWorker reloads the data file off the UI goroutine whenever it
// changes on disk and hands the result to the program. The flat list itself
// is only touched when the UI goroutine handles ReloadMsg.
type ReloadWorker struct {
	dataPath string
	send     func(tea.Msg)

	mu         sync.RWMutex
	state      WorkerState
	dirty      bool // a change came in while processing
	started    bool
	lastHash   string
	lastError  *WorkerError
	errorCount int
	loads      int

	watcher *watcher.Watcher

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewReloadWorker creates a reload worker. An empty DataPath yields a
// worker that never reloads.
func NewReloadWorker(cfg WorkerConfig) (*ReloadWorker, error) {
	if cfg.DebounceDelay == 0 {
		cfg.DebounceDelay = watcher.DefaultDebounceDuration
	}
	send := cfg.Send
	if send == nil && cfg.Program != nil {
		send = cfg.Program.Send
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &ReloadWorker{
		dataPath: cfg.DataPath,
		send:     send,
		state:    WorkerIdle,
		ctx:      ctx,
		cancel:   cancel,
	}

	if cfg.DataPath != "" {
		fw, err := watcher.NewWatcher(cfg.DataPath,
			watcher.WithDebounceDuration(cfg.DebounceDelay),
			watcher.WithOnChange(w.TriggerRefresh),
		)
		if err != nil {
			cancel()
			return nil, err
		}
		w.watcher = fw
	}
	return w, nil
}

// Start begins watching the data file. It is idempotent.
func (w *ReloadWorker) Start() error {
	w.mu.Lock()
	if w.started || w.state == WorkerStopped {
		w.mu.Unlock()
		return nil
	}
	w.started = true
	w.mu.Unlock()

	if w.watcher == nil {
		return nil
	}
	return w.watcher.Start()
}

// Stop halts watching and waits briefly for an in-flight reload. It is
// idempotent.
func (w *ReloadWorker) Stop() {
	w.mu.Lock()
	if w.state == WorkerStopped {
		w.mu.Unlock()
		return
	}
	w.state = WorkerStopped
	w.mu.Unlock()

	w.cancel()
	if w.watcher != nil {
		w.watcher.Stop()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		// Timeout waiting for graceful shutdown
	}
}

// TriggerRefresh schedules a reload. A trigger that arrives while a reload
// runs is coalesced into one more reload afterwards.
func (w *ReloadWorker) TriggerRefresh() {
	w.mu.Lock()
	switch w.state {
	case WorkerStopped:
		w.mu.Unlock()
		return
	case WorkerProcessing:
		w.dirty = true
		w.mu.Unlock()
		return
	}
	w.wg.Add(1)
	w.mu.Unlock()

	go w.process()
}

// SetBaseline records recipes as already delivered, so an unchanged file
// does not produce a ReloadMsg.
func (w *ReloadWorker) SetBaseline(recipes []*model.Recipe) {
	hash, err := contentHash(recipes)
	if err != nil {
		return
	}
	w.mu.Lock()
	w.lastHash = hash
	w.mu.Unlock()
}

// State returns the current worker state.
func (w *ReloadWorker) State() WorkerState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

// LastError returns the most recent error (nil if the last load succeeded).
func (w *ReloadWorker) LastError() *WorkerError {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastError
}

// LastHash returns the content hash of the last delivered recipes.
func (w *ReloadWorker) LastHash() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastHash
}

// Loads returns the number of finished load attempts.
func (w *ReloadWorker) Loads() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.loads
}

func (w *ReloadWorker) process() {
	defer w.wg.Done()

	w.mu.Lock()
	if w.state != WorkerIdle {
		if w.state == WorkerProcessing {
			w.dirty = true
		}
		w.mu.Unlock()
		return
	}
	w.state = WorkerProcessing
	w.dirty = false
	w.mu.Unlock()

	recipes := w.load()

	w.mu.Lock()
	w.loads++
	if w.state == WorkerStopped {
		w.mu.Unlock()
		return
	}
	wasDirty := w.dirty
	w.state = WorkerIdle
	if wasDirty {
		w.wg.Add(1)
	}
	w.mu.Unlock()

	if recipes != nil && w.send != nil {
		w.send(ReloadMsg{Recipes: recipes})
	}
	if wasDirty {
		go w.process()
	}
}

// load reads the data file. It returns nil on error or when the content is
// unchanged since the last delivery.
func (w *ReloadWorker) load() []*model.Recipe {
	if w.dataPath == "" {
		return nil
	}

	var recipes []*model.Recipe
	var hash string
	werr := w.safeCompute("load", func() error {
		var err error
		recipes, err = loader.LoadFile(w.ctx, w.dataPath)
		if err != nil {
			return err
		}
		hash, err = contentHash(recipes)
		return err
	})
	if werr != nil {
		log.Printf("warning: reload %s: %v", w.dataPath, werr.Cause)
		w.recordError(werr)
		if w.send != nil {
			w.send(ReloadErrorMsg{
				Err:         werr,
				Recoverable: !errors.Is(werr, loader.ErrUnsupportedFormat),
			})
		}
		return nil
	}
	w.recordError(nil)

	w.mu.Lock()
	defer w.mu.Unlock()
	if hash == w.lastHash {
		return nil
	}
	w.lastHash = hash
	return recipes
}

// safeCompute executes fn and recovers from any panics.
func (w *ReloadWorker) safeCompute(phase string, fn func() error) *WorkerError {
	var result *WorkerError
	func() {
		defer func() {
			if r := recover(); r != nil {
				result = &WorkerError{
					Phase: phase,
					Cause: fmt.Errorf("panic: %v\n%s", r, debug.Stack()),
					Time:  time.Now(),
				}
			}
		}()
		if err := fn(); err != nil {
			result = &WorkerError{Phase: phase, Cause: err, Time: time.Now()}
		}
	}()
	return result
}

func (w *ReloadWorker) recordError(err *WorkerError) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.lastError = err
	if err == nil {
		w.errorCount = 0
		return
	}
	w.errorCount++
	err.Retries = w.errorCount
}

// contentHash fingerprints recipes through their JSON document form.
func contentHash(recipes []*model.Recipe) (string, error) {
	data, err := loader.Encode(loader.FormatJSON, loader.NewDocument(recipes))
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
