// Package docstore defines the document store contract shared by every
// storage engine and by the services built on top of it.
//
// Documents are raw JSON values grouped into collections and addressed by id.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrNotFound is returned when a requested document or collection does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrExists is returned by Insert when the id is already taken.
	ErrExists = errors.New("document already exists")
	// ErrInvalidDocument is returned when a value is not a JSON object.
	ErrInvalidDocument = errors.New("document must be a JSON object")
)

// --- Functional Interfaces (Interface Segregation) ---

// Reader defines the basic read operations for the store.
type Reader interface {
	Get(ctx context.Context, collection, id string) (json.RawMessage, error)
	// List returns every document of a collection ordered by id.
	// A missing collection yields an empty list.
	List(ctx context.Context, collection string) ([]json.RawMessage, error)
}

// Writer defines the basic write and delete operations for the store.
type Writer interface {
	// Insert stores a new document and fails with ErrExists if the id is taken.
	Insert(ctx context.Context, collection, id string, doc json.RawMessage) error
	Put(ctx context.Context, collection, id string, doc json.RawMessage) error
	Delete(ctx context.Context, collection, id string) error
}

// UpdateFunc receives the current document and returns its replacement.
// Returning an error aborts the update and leaves the document untouched.
// The engine may hold a lock while fn runs, so fn must not call back into the store.
type UpdateFunc func(current json.RawMessage) (json.RawMessage, error)

// Updater performs an atomic read-modify-write of a single document.
type Updater interface {
	Update(ctx context.Context, collection, id string, fn UpdateFunc) error
}

// Enumerator allows discovering collections.
type Enumerator interface {
	Collections(ctx context.Context) ([]string, error)
}

// Exporter allows retrieving bulk data.
type Exporter interface {
	Dump(ctx context.Context, collection string) (map[string]json.RawMessage, error)
}

// --- Composite Interfaces ---

// Store combines all functional interfaces for a complete storage engine.
type Store interface {
	Reader
	Writer
	Updater
	Enumerator
	Exporter

	// Close flushes pending writes and releases resources.
	Close() error
}
