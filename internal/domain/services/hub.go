package services

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mdlive/mdlive/internal/domain/entities"
)

// ReloadSignal tells a subscriber its page (or one of its assets) changed.
type ReloadSignal struct {
	Path      string              `json:"path"`
	Type      entities.ChangeType `json:"-"`
	Change    string              `json:"change"`
	Timestamp time.Time           `json:"timestamp"`
}

// Subscription is one browser connection waiting for a reload signal. It
// fires at most once; a fired subscription is removed from the hub and the
// browser opens a new one.
type Subscription struct {
	ID    string
	paths map[string]struct{}
	ch    chan ReloadSignal
}

// C returns the channel the signal arrives on.
func (s *Subscription) C() <-chan ReloadSignal {
	return s.ch
}

// ReloadHub owns the subscriber set and fans change notifications out to
// matching subscriptions. It implements the ReloadNotifier port for the
// change coordinator.
type ReloadHub struct {
	logger *slog.Logger

	mu   sync.Mutex
	subs map[string]*Subscription
}

// NewReloadHub creates an empty hub
func NewReloadHub(logger *slog.Logger) *ReloadHub {
	if logger == nil {
		logger = slog.Default()
	}

	return &ReloadHub{
		logger: logger.With("service", "reload_hub"),
		subs:   make(map[string]*Subscription),
	}
}

// Subscribe registers interest in a set of canonical paths: the displayed
// page plus its embedded assets.
func (h *ReloadHub) Subscribe(paths []string) *Subscription {
	sub := &Subscription{
		ID:    uuid.New().String(),
		paths: make(map[string]struct{}, len(paths)),
		ch:    make(chan ReloadSignal, 1),
	}
	for _, p := range paths {
		sub.paths[p] = struct{}{}
	}

	h.mu.Lock()
	h.subs[sub.ID] = sub
	h.mu.Unlock()

	return sub
}

// Unsubscribe removes a subscription by id; idempotent. A removed
// subscription is never signaled.
func (h *ReloadHub) Unsubscribe(id string) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}

// Notify signals every subscription whose paths of interest intersect the
// affected set, exactly once each. Fired subscriptions leave the hub before
// the signal is observable.
func (h *ReloadHub) Notify(affected []string, change entities.ChangeEvent) {
	signal := ReloadSignal{
		Path:      change.Path,
		Type:      change.Type,
		Change:    change.Type.String(),
		Timestamp: change.Timestamp,
	}

	h.mu.Lock()
	var fired int
	for id, sub := range h.subs {
		if !sub.matches(affected) {
			continue
		}
		delete(h.subs, id)
		// Buffered to 1 and fired at most once, so this never blocks.
		sub.ch <- signal
		fired++
	}
	h.mu.Unlock()

	if fired > 0 {
		h.logger.Debug("reload fan-out",
			slog.String("path", change.Path),
			slog.String("change", change.Type.String()),
			slog.Int("subscribers", fired),
		)
	}
}

// Len returns the current number of held subscriptions.
func (h *ReloadHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (s *Subscription) matches(affected []string) bool {
	for _, p := range affected {
		if _, ok := s.paths[p]; ok {
			return true
		}
	}
	return false
}
