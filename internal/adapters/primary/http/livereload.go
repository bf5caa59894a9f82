package http

import (
	"encoding/json"
	"net/http"
	"net/url"
	"path/filepath"
	"time"
)

// reloadResponse is the long-poll answer. Reload true means refetch the page;
// otherwise it is a keepalive and the client should immediately resubscribe.
type reloadResponse struct {
	Reload    bool   `json:"reload"`
	Keepalive bool   `json:"keepalive,omitempty"`
	Path      string `json:"path,omitempty"`
	Change    string `json:"change,omitempty"`
}

// handleLiveReload holds the connection open until the coordinator signals a
// matching path, the maximum hold elapses, or the client goes away. The
// subscription leaves the hub on every exit path, so a dropped browser is
// never signaled.
func (s *Server) handleLiveReload(w http.ResponseWriter, r *http.Request) {
	page := s.subscribedPage(r)

	sub := s.hub.Subscribe(s.pathsOfInterest(page))
	defer s.hub.Unsubscribe(sub.ID)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	timer := time.NewTimer(s.maxHold)
	defer timer.Stop()

	select {
	case sig := <-sub.C():
		_ = json.NewEncoder(w).Encode(reloadResponse{
			Reload: true,
			Path:   s.urlFor(sig.Path),
			Change: sig.Change,
		})

	case <-timer.C:
		// Bounded hold: idle tabs resubscribe instead of pinning a
		// subscription forever.
		_ = json.NewEncoder(w).Encode(reloadResponse{Keepalive: true})

	case <-r.Context().Done():
		// Connection dropped: expected, cleanup only.
	}
}

// subscribedPage determines which page the poll is scoped to: the explicit
// query parameter, else the referring page, else the README index.
func (s *Server) subscribedPage(r *http.Request) string {
	if page := r.URL.Query().Get("page"); page != "" && page != "/" {
		return page
	}

	if referer := r.Header.Get("Referer"); referer != "" {
		if u, err := url.Parse(referer); err == nil && u.Path != "" && u.Path != "/" {
			return u.Path
		}
	}

	return "/README.md"
}

// urlFor maps a canonical filesystem path back to its request path.
func (s *Server) urlFor(canonical string) string {
	rel, err := filepath.Rel(s.resolver.Root(), canonical)
	if err != nil {
		return "/"
	}
	return "/" + filepath.ToSlash(rel)
}
