package entities

import "time"

// ContentKind distinguishes rendered markdown pages from raw assets such as
// images or plain files served verbatim.
type ContentKind int

const (
	// KindMarkdown is HTML produced by the markdown converter
	KindMarkdown ContentKind = iota
	// KindAsset is raw file bytes served with an inferred content type
	KindAsset
)

// String returns the string representation of ContentKind
func (k ContentKind) String() string {
	switch k {
	case KindMarkdown:
		return "markdown"
	case KindAsset:
		return "asset"
	default:
		return "unknown"
	}
}

// Rendered is one render cache entry: the last computed output for a canonical
// path plus its freshness metadata.
type Rendered struct {
	// Path is the canonical absolute path the content was rendered from
	Path string

	// Kind tells whether Content is converted HTML or raw bytes
	Kind ContentKind

	// Content is the rendered HTML fragment or the raw file bytes
	Content []byte

	// ContentType is the HTTP content type for asset entries
	ContentType string

	// Title is the page title from frontmatter, empty when absent
	Title string

	// Generation increases monotonically with every fresh render
	Generation uint64

	// ModTime is the file's modification time at render
	ModTime time.Time

	// Assets holds the canonical paths of local images and links the page
	// embeds, used to map asset changes back to open pages
	Assets []string
}

// CacheStats represents render cache statistics
type CacheStats struct {
	// Hits is the number of cache hits
	Hits int64 `json:"hits"`

	// Misses is the number of cache misses
	Misses int64 `json:"misses"`

	// Size is the current number of cached entries
	Size int `json:"size"`
}
