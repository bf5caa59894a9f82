package ports

import "context"

// MarkdownConverter converts raw markdown to an HTML fragment. Implementations
// are the offline goldmark converter and the GitHub API converter; failures
// surface as *entities.RenderError from the render cache.
type MarkdownConverter interface {
	Convert(ctx context.Context, markdown []byte) ([]byte, error)
}

// MarkdownScanner inspects markdown source without rendering it.
type MarkdownScanner interface {
	// LocalAssets extracts the local (non-URL) image and link destinations a
	// document references. The change coordinator uses the result to notify
	// viewers of a page when one of its embedded assets changes.
	LocalAssets(markdown []byte) []string

	// Title returns the document's frontmatter title, empty when absent.
	Title(markdown []byte) string
}
