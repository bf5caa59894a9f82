package resolver

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/mdlive/mdlive/internal/domain/entities"
)

// FilesystemResolver maps request paths onto a canonical served root. The
// root is fixed at construction and every resolution, symlinks included,
// must land inside it.
type FilesystemResolver struct {
	root string
}

// NewFilesystemResolver canonicalizes root and returns a resolver for it.
func NewFilesystemResolver(root string) (*FilesystemResolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root %s: %w", root, err)
	}

	canonical, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("resolving root %s: %w", root, err)
	}

	info, err := os.Stat(canonical)
	if err != nil {
		return nil, fmt.Errorf("resolving root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}

	return &FilesystemResolver{root: canonical}, nil
}

// Root returns the canonical served root.
func (r *FilesystemResolver) Root() string {
	return r.root
}

// Resolve returns the canonical absolute path for a request path, or
// entities.ErrOutOfBounds / entities.ErrNotFound.
func (r *FilesystemResolver) Resolve(requestPath string) (string, error) {
	if netEscapes(requestPath) {
		return "", entities.ErrOutOfBounds
	}

	clean := path.Clean("/" + strings.TrimPrefix(requestPath, "/"))
	full := filepath.Join(r.root, filepath.FromSlash(clean))

	canonical, err := filepath.EvalSymlinks(full)
	if err != nil {
		if os.IsNotExist(err) {
			return "", entities.ErrNotFound
		}
		return "", fmt.Errorf("resolving %s: %w", requestPath, err)
	}

	// A symlink inside the root may still point anywhere on disk.
	rel, err := filepath.Rel(r.root, canonical)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", entities.ErrOutOfBounds
	}

	return canonical, nil
}

// netEscapes reports whether the path's parent-directory segments outnumber
// its real segments at any point, i.e. it escapes the root even after
// normalization.
func netEscapes(p string) bool {
	depth := 0
	for _, seg := range strings.Split(strings.ReplaceAll(p, "\\", "/"), "/") {
		switch seg {
		case "", ".":
		case "..":
			depth--
			if depth < 0 {
				return true
			}
		default:
			depth++
		}
	}
	return false
}
