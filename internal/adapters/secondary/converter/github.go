package converter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// GitHubConverter converts markdown to HTML through GitHub's markdown API, so
// the preview matches github.com rendering exactly. With a context repository
// configured it requests GFM mode, which links issue and commit references.
type GitHubConverter struct {
	apiURL  string
	context string
	client  *http.Client
}

// markdownRequest is the JSON body for POST /markdown.
type markdownRequest struct {
	// Text is the markdown to convert
	Text string `json:"text"`

	// Mode is "markdown" or "gfm" for GitHub Flavored Markdown
	Mode string `json:"mode"`

	// Context is the "owner/repo" GFM references resolve against
	Context string `json:"context,omitempty"`
}

// NewGitHubConverter creates a converter against the given API base URL with
// an optional "owner/repo" rendering context.
func NewGitHubConverter(apiURL, contextRepo string) *GitHubConverter {
	return &GitHubConverter{
		apiURL:  apiURL,
		context: contextRepo,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// Convert posts the markdown to the GitHub API and returns the HTML fragment
func (c *GitHubConverter) Convert(ctx context.Context, markdown []byte) ([]byte, error) {
	_, content := extractFrontmatter(markdown)

	payload, err := json.Marshal(c.buildBody(content))
	if err != nil {
		return nil, fmt.Errorf("encoding markdown request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/markdown", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building markdown request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("converter unavailable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("reading converter response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("converter unavailable: %s: %s", resp.Status, bytes.TrimSpace(body))
	}

	return body, nil
}

func (c *GitHubConverter) buildBody(markdown []byte) markdownRequest {
	if c.context != "" {
		return markdownRequest{
			Text:    string(markdown),
			Mode:    "gfm",
			Context: c.context,
		}
	}

	return markdownRequest{
		Text: string(markdown),
		Mode: "markdown",
	}
}
