package engine

import (
	"fmt"
	"log/slog"

	"github.com/celerix-dev/celerix-build/pkg/docstore"
)

// Supported storage backends.
const (
	BackendMemory = "memory"
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Open initializes the store for the given backend.
// It returns the interface, so callers don't care which engine is behind it.
func Open(backend, path string) (docstore.Store, error) {
	switch backend {
	case BackendMemory:
		return NewMemStore(nil, nil), nil

	case BackendJSON:
		p, err := NewPersistence(path)
		if err != nil {
			return nil, err
		}
		data, err := p.LoadAll()
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		slog.Info("json store loaded", "path", path, "collections", len(data))
		return NewMemStore(data, p), nil

	case BackendSQLite:
		return OpenSQLite(path)

	default:
		return nil, fmt.Errorf("unknown store backend %q", backend)
	}
}
