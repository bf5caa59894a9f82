package converter

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// GoldmarkScanner implements the MarkdownScanner interface by parsing the
// document AST. It never renders, so it works the same whichever converter
// produces the final HTML.
type GoldmarkScanner struct {
	md goldmark.Markdown
}

// NewGoldmarkScanner creates a new AST-based markdown scanner
func NewGoldmarkScanner() *GoldmarkScanner {
	return &GoldmarkScanner{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// LocalAssets returns the deduplicated local image and link destinations the
// document references, in document order.
func (s *GoldmarkScanner) LocalAssets(markdown []byte) []string {
	_, body := extractFrontmatter(markdown)

	doc := s.md.Parser().Parse(text.NewReader(body))

	seen := make(map[string]struct{})
	var assets []string

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		var dest string
		switch node := n.(type) {
		case *ast.Image:
			dest = string(node.Destination)
		case *ast.Link:
			dest = string(node.Destination)
		default:
			return ast.WalkContinue, nil
		}

		if local, ok := localPath(dest); ok {
			if _, dup := seen[local]; !dup {
				seen[local] = struct{}{}
				assets = append(assets, local)
			}
		}

		return ast.WalkContinue, nil
	})

	return assets
}

// Title returns the frontmatter title, empty when absent.
func (s *GoldmarkScanner) Title(markdown []byte) string {
	frontmatter, _ := extractFrontmatter(markdown)
	if title, ok := frontmatter["title"].(string); ok {
		return title
	}
	return ""
}

// localPath reports whether dest points at a file served from the watched
// root, and returns it stripped of query and fragment.
func localPath(dest string) (string, bool) {
	if dest == "" || strings.HasPrefix(dest, "#") || strings.HasPrefix(dest, "//") {
		return "", false
	}
	if strings.Contains(dest, "://") || strings.HasPrefix(dest, "mailto:") || strings.HasPrefix(dest, "data:") {
		return "", false
	}

	if i := strings.IndexAny(dest, "?#"); i >= 0 {
		dest = dest[:i]
	}
	if dest == "" {
		return "", false
	}

	return dest, true
}
