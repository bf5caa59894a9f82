package ports

import (
	"context"

	"github.com/mdlive/mdlive/internal/domain/entities"
)

// FileWatcher watches a directory tree and emits normalized change events.
// The stream lives until the context is cancelled or Stop is called; it is
// not restartable mid-stream. Deduplication is deliberately not done here:
// the change coordinator owns the debounce window and has the context to
// coalesce correctly.
type FileWatcher interface {
	// Watch starts watching root recursively, including directories created
	// after the watch begins. Returns *entities.WatchError when the watch
	// cannot be established.
	Watch(ctx context.Context, root string) (<-chan entities.ChangeEvent, error)

	// Stop tears down the watch and closes the event channel.
	Stop() error
}
