package ports

import (
	"context"

	"github.com/mdlive/mdlive/internal/domain/entities"
)

// ConfigLoader loads configuration from persistent storage
type ConfigLoader interface {
	// LoadGlobal loads the user-level configuration, creating defaults on
	// first run
	LoadGlobal(ctx context.Context) (*entities.Config, error)

	// LoadLocal loads the per-directory configuration; nil when absent
	LoadLocal(ctx context.Context, dir string) (*entities.Config, error)

	// LoadFile loads an explicitly named configuration file. Unlike
	// LoadLocal, a missing file is an error.
	LoadFile(ctx context.Context, path string) (*entities.Config, error)
}
