package watcher

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mdlive/mdlive/internal/domain/entities"
)

// FsnotifyWatcher implements the FileWatcher interface on top of the OS
// change-notification mechanism. It watches a root recursively, picks up
// directories created after the watch begins, and normalizes fsnotify ops
// into entities.ChangeEvent. It does no deduplication; the change
// coordinator's debounce window owns that.
type FsnotifyWatcher struct {
	watcher *fsnotify.Watcher
	events  chan entities.ChangeEvent

	mu       sync.Mutex
	started  bool
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewFsnotifyWatcher creates a new fsnotify-based watcher
func NewFsnotifyWatcher() *FsnotifyWatcher {
	return &FsnotifyWatcher{
		events: make(chan entities.ChangeEvent, 64),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Watch establishes a recursive watch on root and returns the event stream.
// The stream closes when ctx is cancelled or Stop is called; it is not
// restartable.
func (w *FsnotifyWatcher) Watch(ctx context.Context, root string) (<-chan entities.ChangeEvent, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started {
		return nil, &entities.WatchError{Dir: root, Err: os.ErrInvalid}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, &entities.WatchError{Dir: root, Err: err}
	}

	if err := addRecursive(fsw, root); err != nil {
		_ = fsw.Close()
		return nil, &entities.WatchError{Dir: root, Err: err}
	}

	w.watcher = fsw
	w.started = true

	go w.run(ctx)

	return w.events, nil
}

// Stop tears down the watch and closes the event channel.
func (w *FsnotifyWatcher) Stop() error {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	w.stopOnce.Do(func() { close(w.stop) })

	<-w.done
	return nil
}

func (w *FsnotifyWatcher) run(ctx context.Context) {
	defer func() {
		_ = w.watcher.Close()
		close(w.events)
		close(w.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stop:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Per-event errors are not fatal to the stream
			log.Printf("[WARN] [watcher] %v", err)
		}
	}
}

func (w *FsnotifyWatcher) handle(ctx context.Context, event fsnotify.Event) {
	path := filepath.Clean(event.Name)

	var changeType entities.ChangeType
	switch {
	case event.Op.Has(fsnotify.Create):
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			// New subdirectory: extend the watch instead of emitting
			if err := addRecursive(w.watcher, path); err != nil {
				log.Printf("[WARN] [watcher] watching new directory %s: %v", path, err)
			}
			return
		}
		changeType = entities.Created
	case event.Op.Has(fsnotify.Write):
		changeType = entities.Modified
	case event.Op.Has(fsnotify.Remove):
		changeType = entities.Removed
	case event.Op.Has(fsnotify.Rename):
		changeType = entities.Renamed
	default:
		// Attribute-only touches still flow downstream; only the debounce
		// window has the context to coalesce them.
		changeType = entities.Modified
	}

	change := entities.ChangeEvent{
		Path:      path,
		Type:      changeType,
		Timestamp: time.Now(),
	}

	select {
	case w.events <- change:
	case <-ctx.Done():
	case <-w.stop:
	}
}

// addRecursive watches dir and every directory below it.
func addRecursive(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
}
