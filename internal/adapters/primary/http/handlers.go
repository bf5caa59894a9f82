package http

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/mdlive/mdlive/internal/domain/entities"
)

// generationHeader exposes the cache entry's generation, mostly for tests
// asserting that a reload observes post-invalidation content.
const generationHeader = "X-Mdlive-Generation"

// handlePage serves any path under the watched root: markdown files as
// rendered HTML pages, everything else as raw bytes.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	requestPath := r.URL.Path

	canonical, err := s.resolver.Resolve(requestPath)
	if err == nil {
		if info, statErr := os.Stat(canonical); statErr == nil && info.IsDir() {
			// Directory requests fall back to the README, like the repository
			// front page on GitHub.
			requestPath = path.Join(requestPath, "README.md")
			canonical, err = s.resolver.Resolve(requestPath)
		}
	}
	if err != nil {
		s.writeResolveError(w, requestPath, err)
		return
	}

	entry, err := s.cache.GetOrRender(r.Context(), canonical)
	if err != nil {
		var renderErr *entities.RenderError
		switch {
		case errors.As(err, &renderErr):
			s.logger.Warn("render failed for %s: %v", requestPath, err)
			writeErrorPage(w, http.StatusInternalServerError, "Could not render this file",
				fmt.Sprintf("%s could not be converted to HTML: %v", requestPath, renderErr.Err))
		case errors.Is(err, entities.ErrNotFound):
			// Deleted between resolution and read
			s.writeResolveError(w, requestPath, entities.ErrNotFound)
		default:
			s.logger.Error("serving %s: %v", requestPath, err)
			writeErrorPage(w, http.StatusInternalServerError, "Something went wrong",
				"The server could not read this file.")
		}
		return
	}

	w.Header().Set(generationHeader, strconv.FormatUint(entry.Generation, 10))

	if entry.Kind == entities.KindAsset {
		w.Header().Set("Content-Type", entry.ContentType)
		if r.Method == http.MethodHead {
			return
		}
		_, _ = w.Write(entry.Content)
		return
	}

	title := entry.Title
	if title == "" {
		title = displayTitle(requestPath)
	}

	if r.Method == http.MethodHead {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		return
	}

	writePage(w, http.StatusOK, title, path.Base(requestPath), entry.Content)
}

// writeResolveError maps resolver failures onto the error taxonomy: out of
// bounds is a rejection, not found is a friendly 404, anything else is a
// server-side failure. All are scoped to the single request.
func (s *Server) writeResolveError(w http.ResponseWriter, requestPath string, err error) {
	switch {
	case errors.Is(err, entities.ErrOutOfBounds):
		s.logger.Warn("rejected out-of-bounds path %s", requestPath)
		writeErrorPage(w, http.StatusForbidden, "Path not allowed",
			"The requested path is outside the folder being served.")
	case errors.Is(err, entities.ErrNotFound):
		writeErrorPage(w, http.StatusNotFound, "Couldn't find "+requestPath,
			"For the index page mdlive looks for a README.md in the served folder. "+
				"Otherwise it looks for an exact file name.")
	default:
		s.logger.Error("resolving %s: %v", requestPath, err)
		writeErrorPage(w, http.StatusInternalServerError, "Something went wrong",
			"The server could not resolve this path.")
	}
}

// pathsOfInterest returns the canonical paths a viewer of page cares about:
// the page itself plus every asset its cached render embeds.
func (s *Server) pathsOfInterest(page string) []string {
	canonical, err := s.resolver.Resolve(page)
	if err != nil {
		// The page may not exist yet (or was just deleted); subscribe to the
		// position it would occupy so a (re)creation still signals.
		canonical = filepath.Join(s.resolver.Root(), filepath.FromSlash(path.Clean("/"+page)))
	}

	return append([]string{canonical}, s.cache.Assets(canonical)...)
}
