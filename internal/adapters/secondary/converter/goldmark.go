package converter

import (
	"bytes"
	"context"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// OfflineConverter converts markdown to HTML locally using Goldmark with the
// GitHub-flavored extension set. Output is sanitized with a UGC policy, the
// same posture GitHub applies to rendered markdown. It may not be 100%
// identical to GitHub's output but needs no network access.
type OfflineConverter struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// NewOfflineConverter creates a new Goldmark-based converter
func NewOfflineConverter() *OfflineConverter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,         // tables, strikethrough, task lists, autolinks
			extension.Typographer, // smart punctuation
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(), // raw HTML passes through, the policy strips it
		),
	)

	policy := bluemonday.UGCPolicy()
	// Task list checkboxes survive sanitization the way GitHub renders them.
	policy.AllowAttrs("type", "checked", "disabled").OnElements("input")
	policy.AllowAttrs("class").OnElements("code", "pre", "input", "li", "ul")

	return &OfflineConverter{md: md, policy: policy}
}

// Convert renders markdown to a sanitized HTML fragment
func (c *OfflineConverter) Convert(ctx context.Context, markdown []byte) ([]byte, error) {
	_, body := extractFrontmatter(markdown)

	var buf bytes.Buffer
	if err := c.md.Convert(body, &buf); err != nil {
		return nil, fmt.Errorf("converting markdown: %w", err)
	}

	return c.policy.SanitizeBytes(buf.Bytes()), nil
}
