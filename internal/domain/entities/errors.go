package entities

import (
	"errors"
	"fmt"
)

// ErrOutOfBounds indicates a request path that resolves outside the served
// root, including escapes through symlinks or parent-directory segments.
var ErrOutOfBounds = errors.New("path resolves outside the served root")

// ErrNotFound indicates the request path does not exist under the served root.
var ErrNotFound = errors.New("file not found")

// RenderError wraps a failure from the markdown converter. It is scoped to a
// single path: the failing entry is never cached and sibling files are
// unaffected.
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering %s: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// WatchError indicates the filesystem watch could not be established for a
// directory. Fatal at startup for the root; callers may retry for subtrees.
type WatchError struct {
	Dir string
	Err error
}

func (e *WatchError) Error() string {
	return fmt.Sprintf("watching %s: %v", e.Dir, e.Err)
}

func (e *WatchError) Unwrap() error {
	return e.Err
}
