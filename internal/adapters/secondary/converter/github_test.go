package converter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGitHubConvertPostsMarkdownMode(t *testing.T) {
	var got markdownRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/markdown", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("<h1>Hello</h1>"))
	}))
	defer server.Close()

	conv := NewGitHubConverter(server.URL, "")
	html, err := conv.Convert(context.Background(), []byte("# Hello"))
	require.NoError(t, err)

	assert.Equal(t, "<h1>Hello</h1>", string(html))
	assert.Equal(t, "# Hello", got.Text)
	assert.Equal(t, "markdown", got.Mode)
	assert.Empty(t, got.Context)
}

func TestGitHubConvertUsesGFMModeWithContext(t *testing.T) {
	var got markdownRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	conv := NewGitHubConverter(server.URL, "owner/repo")
	_, err := conv.Convert(context.Background(), []byte("fixes #12"))
	require.NoError(t, err)

	assert.Equal(t, "gfm", got.Mode)
	assert.Equal(t, "owner/repo", got.Context)
}

func TestGitHubConvertStripsFrontmatterBeforePosting(t *testing.T) {
	var got markdownRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	conv := NewGitHubConverter(server.URL, "")
	_, err := conv.Convert(context.Background(), []byte("---\ntitle: T\n---\n# Body"))
	require.NoError(t, err)

	assert.Equal(t, "# Body", got.Text)
}

func TestGitHubConvertAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	defer server.Close()

	conv := NewGitHubConverter(server.URL, "")
	_, err := conv.Convert(context.Background(), []byte("# Hello"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "converter unavailable")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestGitHubConvertUnreachableHost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	conv := NewGitHubConverter(server.URL, "")
	_, err := conv.Convert(context.Background(), []byte("# Hello"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "converter unavailable")
}
