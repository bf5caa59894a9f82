package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mdlive/mdlive/internal/domain/entities"
	"github.com/mdlive/mdlive/internal/domain/ports"
)

// ChangeCoordinator consumes raw filesystem events and turns bursts of them
// into single, ordered reload rounds. Each watched path runs an independent
// state machine: Idle until the first event opens a debounce window, the
// window slides while events keep arriving, and when the quiet period
// elapses the path flushes: cache invalidation first, then subscriber
// notification. Editors that save via write-temp-then-rename produce a
// remove+create pair inside one window; that coalesces to a single
// modification so viewers never see a "not found" flash.
type ChangeCoordinator struct {
	cache    ports.RenderCache
	notifier ports.ReloadNotifier
	quiet    time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	pending map[string]*debounceWindow
	closed  bool
}

// debounceWindow accumulates events for one path while its timer runs.
type debounceWindow struct {
	timer   *time.Timer
	created bool
	removed bool
	last    entities.ChangeEvent
}

// NewChangeCoordinator creates a coordinator with the given quiet period
func NewChangeCoordinator(cache ports.RenderCache, notifier ports.ReloadNotifier, quiet time.Duration, logger *slog.Logger) *ChangeCoordinator {
	if logger == nil {
		logger = slog.Default()
	}

	return &ChangeCoordinator{
		cache:    cache,
		notifier: notifier,
		quiet:    quiet,
		logger:   logger.With("service", "coordinator"),
		pending:  make(map[string]*debounceWindow),
	}
}

// Run consumes the watcher stream until it closes or ctx is cancelled.
// Pending windows are discarded on shutdown.
func (c *ChangeCoordinator) Run(ctx context.Context, events <-chan entities.ChangeEvent) {
	defer c.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			c.Observe(event)
		}
	}
}

// Observe feeds one raw change event into the path's debounce window,
// opening it if the path was idle.
func (c *ChangeCoordinator) Observe(event entities.ChangeEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	w, ok := c.pending[event.Path]
	if !ok {
		w = &debounceWindow{}
		c.pending[event.Path] = w
		path := event.Path
		w.timer = time.AfterFunc(c.quiet, func() { c.flush(path) })
	} else {
		// Sliding window: a burst flushes once, after its last event.
		w.timer.Reset(c.quiet)
	}

	switch event.Type {
	case entities.Created:
		w.created = true
	case entities.Removed, entities.Renamed:
		w.removed = true
	}
	w.last = event
}

// flush closes the window for a path: one invalidation, one notification
// round. Invalidation strictly precedes notification so a signaled
// subscriber can never refetch pre-invalidation content.
func (c *ChangeCoordinator) flush(path string) {
	c.mu.Lock()
	w, ok := c.pending[path]
	delete(c.pending, path)
	closed := c.closed
	c.mu.Unlock()

	if !ok || closed {
		return
	}

	effective := w.last
	if w.removed && w.created {
		// Atomic-save rename pair within one window is a plain modification.
		effective.Type = entities.Modified
	}

	c.cache.Invalidate(path)

	affected := append([]string{path}, c.cache.PagesEmbedding(path)...)
	c.notifier.Notify(affected, effective)

	c.logger.Debug("flushed change",
		slog.String("path", path),
		slog.String("change", effective.Type.String()),
		slog.Int("affected", len(affected)),
	)
}

// PendingPaths returns the paths currently inside a debounce window.
func (c *ChangeCoordinator) PendingPaths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	paths := make([]string, 0, len(c.pending))
	for p := range c.pending {
		paths = append(paths, p)
	}
	return paths
}

func (c *ChangeCoordinator) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	for path, w := range c.pending {
		w.timer.Stop()
		delete(c.pending, path)
	}
}
