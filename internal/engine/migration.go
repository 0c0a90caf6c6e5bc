package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/celerix-dev/celerix-build/pkg/docstore"
)

// Migrate copies every document from a source store into a destination store.
// This works for any pair of engines, e.g. JSON files -> SQLite and back.
// It returns the number of documents copied.
func Migrate(ctx context.Context, src docstore.Store, dst docstore.Store) (int, error) {
	collections, err := src.Collections(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list collections: %w", err)
	}

	copied := 0
	for _, name := range collections {
		docs, err := src.Dump(ctx, name)
		if errors.Is(err, docstore.ErrNotFound) {
			continue
		}
		if err != nil {
			return copied, fmt.Errorf("failed to dump collection %s: %w", name, err)
		}

		for id, doc := range docs {
			if err := dst.Put(ctx, name, id, doc); err != nil {
				return copied, fmt.Errorf("failed to write %s/%s to destination: %w", name, id, err)
			}
			copied++
		}
	}

	return copied, nil
}
