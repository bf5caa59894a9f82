package http

import (
	"crypto/sha1" // #nosec G505 - ETag fingerprint, not a security boundary
	"embed"
	"encoding/hex"
	"mime"
	"net/http"
	"path"
	"strings"
)

// Bundling the stylesheet into the binary keeps the preview server a single
// portable executable.
//
//go:embed static
var staticFS embed.FS

// handleStatic serves embedded assets with ETag revalidation.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	name := path.Clean(strings.TrimPrefix(r.URL.Path, "/"))

	content, err := staticFS.ReadFile(name)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	digest := sha1.Sum(content) // #nosec G401
	etag := `"` + hex.EncodeToString(digest[:]) + `"`

	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("ETag", etag)
	_, _ = w.Write(content)
}
