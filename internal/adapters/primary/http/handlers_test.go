package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdlive/mdlive/internal/adapters/secondary/converter"
	"github.com/mdlive/mdlive/internal/adapters/secondary/resolver"
	"github.com/mdlive/mdlive/internal/domain/entities"
	"github.com/mdlive/mdlive/internal/domain/ports"
	"github.com/mdlive/mdlive/internal/domain/services"
)

// failOnBoom converts markdown locally but fails for content containing
// "boom", for exercising per-page render failures.
type failOnBoom struct {
	inner ports.MarkdownConverter
}

func (c *failOnBoom) Convert(ctx context.Context, markdown []byte) ([]byte, error) {
	if bytes.Contains(markdown, []byte("boom")) {
		return nil, errors.New("converter unavailable")
	}
	return c.inner.Convert(ctx, markdown)
}

type serverOptions struct {
	converter ports.MarkdownConverter
}

func newTestServer(t *testing.T, files map[string]string, opts serverOptions) (*Server, http.Handler) {
	t.Helper()

	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	}

	res, err := resolver.NewFilesystemResolver(root)
	require.NoError(t, err)

	conv := opts.converter
	if conv == nil {
		conv = converter.NewOfflineConverter()
	}

	cache := services.NewRenderCache(res.Root(), conv, converter.NewGoldmarkScanner(), nil)
	hub := services.NewReloadHub(nil)

	srv := NewServer(res, cache, hub, &entities.Config{})
	return srv, srv.setupRoutes()
}

func get(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestServeRenderedMarkdown(t *testing.T) {
	_, handler := newTestServer(t, map[string]string{
		"a.md": "# Hello World",
	}, serverOptions{})

	w := get(t, handler, "/a.md")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get(generationHeader))

	body := w.Body.String()
	assert.Contains(t, body, "Hello World</h1>")
	assert.Contains(t, body, liveReloadPath, "page must carry the live-reload script")
	assert.Contains(t, body, "<title>A</title>")
}

func TestTitleFromFrontmatterWinsOverFilename(t *testing.T) {
	_, handler := newTestServer(t, map[string]string{
		"getting-started.md": "---\ntitle: The Real Title\n---\n# Heading",
	}, serverOptions{})

	w := get(t, handler, "/getting-started.md")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<title>The Real Title</title>")
}

func TestFilenameDerivedTitle(t *testing.T) {
	_, handler := newTestServer(t, map[string]string{
		"getting-started.md": "# Heading",
	}, serverOptions{})

	w := get(t, handler, "/getting-started.md")

	assert.Contains(t, w.Body.String(), "<title>Getting Started</title>")
}

func TestRootServesReadme(t *testing.T) {
	_, handler := newTestServer(t, map[string]string{
		"README.md": "# Project Front Page",
	}, serverOptions{})

	w := get(t, handler, "/")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Project Front Page")
}

func TestDirectoryServesItsReadme(t *testing.T) {
	_, handler := newTestServer(t, map[string]string{
		"docs/README.md": "# Docs Index",
	}, serverOptions{})

	w := get(t, handler, "/docs")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Docs Index")
}

func TestRootWithoutReadmeIs404(t *testing.T) {
	_, handler := newTestServer(t, map[string]string{
		"other.md": "# Not The Index",
	}, serverOptions{})

	w := get(t, handler, "/")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "README.md")
}

func TestAssetServedRaw(t *testing.T) {
	_, handler := newTestServer(t, map[string]string{
		"images/logo.png": "\x89PNG fake",
	}, serverOptions{})

	w := get(t, handler, "/images/logo.png")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG fake", w.Body.String())
}

func TestMissingFileIs404(t *testing.T) {
	_, handler := newTestServer(t, nil, serverOptions{})

	w := get(t, handler, "/missing.md")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "missing.md")
}

func TestTraversalRejected(t *testing.T) {
	srv, _ := newTestServer(t, map[string]string{
		"a.md": "# ok",
	}, serverOptions{})

	// Bypass the router's path cleaning; a raw client can send this.
	r := httptest.NewRequest(http.MethodGet, "/x", nil)
	r.URL.Path = "/../../etc/passwd"
	w := httptest.NewRecorder()
	srv.handlePage(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), "root:")
}

func TestRenderFailureScopedToOnePage(t *testing.T) {
	_, handler := newTestServer(t, map[string]string{
		"bad.md":  "# boom",
		"good.md": "# Fine",
	}, serverOptions{converter: &failOnBoom{inner: converter.NewOfflineConverter()}})

	w := get(t, handler, "/bad.md")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "bad.md")

	// A sibling page keeps working.
	w = get(t, handler, "/good.md")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Fine")
}

func TestHeadRequest(t *testing.T) {
	_, handler := newTestServer(t, map[string]string{
		"a.md": "# Hello",
	}, serverOptions{})

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/a.md", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Empty(t, w.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	_, handler := newTestServer(t, map[string]string{
		"a.md": "# Hello",
	}, serverOptions{})

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/a.md", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestStaticStylesheetWithETag(t *testing.T) {
	_, handler := newTestServer(t, nil, serverOptions{})

	w := get(t, handler, "/static/style.css")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/css; charset=utf-8", w.Header().Get("Content-Type"))

	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	r := httptest.NewRequest(http.MethodGet, "/static/style.css", nil)
	r.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestMissingStaticAssetIs404(t *testing.T) {
	_, handler := newTestServer(t, nil, serverOptions{})

	w := get(t, handler, "/static/nope.js")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDisplayTitle(t *testing.T) {
	assert.Equal(t, "Getting Started", displayTitle("/getting-started.md"))
	assert.Equal(t, "Release Notes", displayTitle("/docs/release_notes.markdown"))
	assert.Equal(t, "Readme", displayTitle("README.md"))
	assert.Equal(t, "mdlive", displayTitle("/"))
}
