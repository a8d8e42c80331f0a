package watcher

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const DEBOUNCE_SECS = 2

// Watcher monitors a single file for changes and emits debounced events.
// The parent directory is watched rather than the file itself, so atomic
// replace-by-rename (the usual way editors and tools rewrite a file)
// is still seen.
type Watcher struct {
	watcher       *fsnotify.Watcher
	watchPath     string
	debounceTimer *time.Timer
	debounceMutex sync.Mutex
	running       bool
	stopChan      chan struct{}
	eventChan     chan<- Event
}

// New creates a new file watcher emitting on eventChan.
func New(eventChan chan<- Event) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:   watcher,
		eventChan: eventChan,
		stopChan:  make(chan struct{}),
	}, nil
}

// Start begins watching the file at watchPath for changes.
func (w *Watcher) Start(ctx context.Context, watchPath string) error {
	w.watchPath = watchPath
	slog.Info("Starting file watcher", "path", watchPath)

	if err := w.watcher.Add(filepath.Dir(watchPath)); err != nil {
		return err
	}

	w.running = true
	go w.watchLoop(ctx)

	return nil
}

// Stop stops the file watcher.
func (w *Watcher) Stop() {
	if !w.running {
		return
	}

	slog.Info("Stopping file watcher")
	w.running = false
	close(w.stopChan)

	w.debounceMutex.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
	w.debounceMutex.Unlock()

	w.watcher.Close()
}

// watchLoop processes file system events
func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("File watcher error", "error", err)

		case <-w.stopChan:
			return

		case <-ctx.Done():
			return
		}
	}
}

// handleEvent processes a single file system event
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	// Events for sibling files in the same directory are not ours.
	if filepath.Clean(event.Name) != filepath.Clean(w.watchPath) {
		return
	}

	w.debounceMutex.Lock()
	defer w.debounceMutex.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.debounceTimer = time.AfterFunc(time.Duration(DEBOUNCE_SECS)*time.Second, func() {
		w.emitDebounceEvent()
	})
}

// emitDebounceEvent emits a file event after the debounce period
func (w *Watcher) emitDebounceEvent() {
	event := Event{
		Path:      w.watchPath,
		Timestamp: time.Now(),
	}

	select {
	case w.eventChan <- event:
		slog.Debug("Emitted file event after debounce", "path", event.Path)
	default:
		slog.Warn("Event channel full, dropping file event", "path", event.Path)
	}
}
