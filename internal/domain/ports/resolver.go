package ports

// PathResolver maps request paths to canonical absolute filesystem paths
// inside the served root.
type PathResolver interface {
	// Resolve canonicalizes requestPath, following symlinks. It returns
	// entities.ErrOutOfBounds when resolution escapes the root and
	// entities.ErrNotFound when no such file exists.
	Resolve(requestPath string) (string, error)

	// Root returns the canonical served root.
	Root() string
}
