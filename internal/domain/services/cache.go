package services

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/mdlive/mdlive/internal/domain/entities"
	"github.com/mdlive/mdlive/internal/domain/ports"
)

// RenderCache holds the last computed render per canonical path. Markdown
// files go through the converter collaborator; anything else is raw bytes
// with an inferred content type. Concurrent misses on one path collapse to a
// single render, and render failures are surfaced without being stored so
// the next call retries from scratch.
type RenderCache struct {
	root      string
	converter ports.MarkdownConverter
	scanner   ports.MarkdownScanner
	logger    *slog.Logger

	mu      sync.RWMutex
	entries map[string]*entities.Rendered
	epochs  map[string]uint64

	group  singleflight.Group
	gen    atomic.Uint64
	hits   atomic.Int64
	misses atomic.Int64
}

// NewRenderCache creates a render cache over the served root
func NewRenderCache(root string, converter ports.MarkdownConverter, scanner ports.MarkdownScanner, logger *slog.Logger) *RenderCache {
	if logger == nil {
		logger = slog.Default()
	}

	return &RenderCache{
		root:      root,
		converter: converter,
		scanner:   scanner,
		logger:    logger.With("service", "render_cache"),
		entries:   make(map[string]*entities.Rendered),
		epochs:    make(map[string]uint64),
	}
}

// GetOrRender returns the cached entry for a canonical path, rendering on
// miss. The returned entry must not be mutated.
func (c *RenderCache) GetOrRender(ctx context.Context, canonical string) (*entities.Rendered, error) {
	c.mu.RLock()
	entry, ok := c.entries[canonical]
	c.mu.RUnlock()

	if ok {
		c.hits.Add(1)
		return entry, nil
	}

	c.misses.Add(1)

	v, err, _ := c.group.Do(canonical, func() (interface{}, error) {
		// A flight that finished while we queued may have stored already.
		c.mu.RLock()
		entry, ok := c.entries[canonical]
		epoch := c.epochs[canonical]
		c.mu.RUnlock()
		if ok {
			return entry, nil
		}

		rendered, err := c.render(ctx, canonical)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		rendered.Generation = c.gen.Add(1)
		// An invalidation that raced the render wins: the entry is not
		// stored, so the next fetch re-renders the fresh content.
		if c.epochs[canonical] == epoch {
			c.entries[canonical] = rendered
		}
		c.mu.Unlock()

		return rendered, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*entities.Rendered), nil
}

// Invalidate drops the cached entry for a canonical path; idempotent.
func (c *RenderCache) Invalidate(canonical string) {
	c.mu.Lock()
	delete(c.entries, canonical)
	c.epochs[canonical]++
	c.mu.Unlock()

	// New callers start a fresh render instead of joining a stale flight.
	c.group.Forget(canonical)
}

// PagesEmbedding returns the canonical paths of cached markdown pages whose
// rendered output references the given asset.
func (c *RenderCache) PagesEmbedding(asset string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var pages []string
	for path, entry := range c.entries {
		if entry.Kind != entities.KindMarkdown || path == asset {
			continue
		}
		for _, a := range entry.Assets {
			if a == asset {
				pages = append(pages, path)
				break
			}
		}
	}

	return pages
}

// Assets returns the embedded asset paths recorded for a cached page.
func (c *RenderCache) Assets(page string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[page]
	if !ok {
		return nil
	}

	assets := make([]string, len(entry.Assets))
	copy(assets, entry.Assets)
	return assets
}

// Stats returns current cache statistics
func (c *RenderCache) Stats() entities.CacheStats {
	c.mu.RLock()
	size := len(c.entries)
	c.mu.RUnlock()

	return entities.CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   size,
	}
}

// render reads and converts a single path. Failures are never cached.
func (c *RenderCache) render(ctx context.Context, canonical string) (*entities.Rendered, error) {
	info, err := os.Stat(canonical)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, entities.ErrNotFound
		}
		return nil, fmt.Errorf("reading %s: %w", canonical, err)
	}
	if info.IsDir() {
		return nil, entities.ErrNotFound
	}

	content, err := os.ReadFile(canonical) // #nosec G304 - canonical is resolver-validated
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", canonical, err)
	}

	if !IsMarkdown(canonical) {
		return &entities.Rendered{
			Path:        canonical,
			Kind:        entities.KindAsset,
			Content:     content,
			ContentType: detectContentType(canonical, content),
			ModTime:     info.ModTime(),
		}, nil
	}

	html, err := c.converter.Convert(ctx, content)
	if err != nil {
		return nil, &entities.RenderError{Path: canonical, Err: err}
	}

	rendered := &entities.Rendered{
		Path:    canonical,
		Kind:    entities.KindMarkdown,
		Content: html,
		Title:   c.scanner.Title(content),
		ModTime: info.ModTime(),
		Assets:  c.resolveAssets(canonical, c.scanner.LocalAssets(content)),
	}

	c.logger.Debug("rendered page",
		slog.String("path", canonical),
		slog.Int("bytes", len(html)),
		slog.Int("assets", len(rendered.Assets)),
	)

	return rendered, nil
}

// resolveAssets turns document-relative asset references into canonical
// absolute paths under the root.
func (c *RenderCache) resolveAssets(page string, refs []string) []string {
	if len(refs) == 0 {
		return nil
	}

	assets := make([]string, 0, len(refs))
	for _, ref := range refs {
		var abs string
		if strings.HasPrefix(ref, "/") {
			abs = filepath.Join(c.root, filepath.FromSlash(ref))
		} else {
			abs = filepath.Join(filepath.Dir(page), filepath.FromSlash(ref))
		}
		assets = append(assets, filepath.Clean(abs))
	}

	return assets
}

// IsMarkdown reports whether a path looks like a markdown file.
func IsMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".mdown":
		return true
	default:
		return false
	}
}

func detectContentType(path string, content []byte) string {
	if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
		return byExt
	}
	return http.DetectContentType(content)
}
