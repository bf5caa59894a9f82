package entities

import "time"

// ChangeEvent represents a single raw filesystem change. Events are transient:
// the change coordinator consumes and discards them.
type ChangeEvent struct {
	Path      string
	Type      ChangeType
	Timestamp time.Time
}

// ChangeType represents the type of file change
type ChangeType int

const (
	// Modified indicates the file content was changed
	Modified ChangeType = iota
	// Created indicates the file was created
	Created
	// Removed indicates the file was deleted
	Removed
	// Renamed indicates the file was renamed
	Renamed
)

// String returns the string representation of ChangeType
func (c ChangeType) String() string {
	switch c {
	case Modified:
		return "modified"
	case Created:
		return "created"
	case Removed:
		return "removed"
	case Renamed:
		return "renamed"
	default:
		return "unknown"
	}
}
