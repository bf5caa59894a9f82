package ports

import (
	"context"

	"github.com/mdlive/mdlive/internal/domain/entities"
)

// RenderCache is the coordinator-facing surface of the render cache.
type RenderCache interface {
	// GetOrRender returns the cached entry for a canonical path, rendering
	// on miss. Concurrent misses for one path collapse to a single render.
	GetOrRender(ctx context.Context, canonical string) (*entities.Rendered, error)

	// Invalidate drops the entry for a canonical path; idempotent.
	Invalidate(canonical string)

	// PagesEmbedding returns the canonical paths of cached pages whose
	// rendered output references the given asset.
	PagesEmbedding(asset string) []string

	// Assets returns the embedded asset paths recorded for a cached page.
	Assets(page string) []string
}

// ReloadNotifier receives flush notifications from the change coordinator.
// Paths lists every canonical path affected by the change: the changed file
// itself plus any page embedding it.
type ReloadNotifier interface {
	Notify(paths []string, change entities.ChangeEvent)
}

// BrowserLauncher opens a URL in the user's browser
type BrowserLauncher interface {
	Launch(url string) error
}
