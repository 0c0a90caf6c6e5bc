// Package engine implements the document storage engines behind docstore.Store.
package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"

	"github.com/celerix-dev/celerix-build/pkg/docstore"
)

// MemStore is a thread-safe in-memory document store.
// With a persister attached every write is flushed to disk in the background.
type MemStore struct {
	mu sync.RWMutex
	// Structure: [collection][id]document
	data      map[string]map[string]json.RawMessage
	versions  map[string]uint64
	persister *Persistence
	wg        sync.WaitGroup
}

var _ docstore.Store = (*MemStore)(nil)

// NewMemStore initializes a store.
// It accepts existing data (from LoadAll) and an optional persister.
func NewMemStore(initialData map[string]map[string]json.RawMessage, p *Persistence) *MemStore {
	if initialData == nil {
		initialData = make(map[string]map[string]json.RawMessage)
	}
	return &MemStore{
		data:      initialData,
		versions:  make(map[string]uint64),
		persister: p,
	}
}

// Wait waits for all background persistence tasks to complete.
func (m *MemStore) Wait() {
	m.wg.Wait()
}

// Close flushes pending writes.
func (m *MemStore) Close() error {
	m.Wait()
	return nil
}

func (m *MemStore) Get(_ context.Context, collection, id string) (json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs, ok := m.data[collection]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	doc, ok := docs[id]
	if !ok {
		return nil, docstore.ErrNotFound
	}
	return cloneRaw(doc), nil
}

func (m *MemStore) List(_ context.Context, collection string) ([]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := m.data[collection]
	ids := make([]string, 0, len(docs))
	for id := range docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]json.RawMessage, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneRaw(docs[id]))
	}
	return out, nil
}

func (m *MemStore) Insert(_ context.Context, collection, id string, doc json.RawMessage) error {
	if !docstore.IsObject(doc) {
		return docstore.ErrInvalidDocument
	}

	m.mu.Lock()
	if m.data[collection] == nil {
		m.data[collection] = make(map[string]json.RawMessage)
	}
	if _, ok := m.data[collection][id]; ok {
		m.mu.Unlock()
		return docstore.ErrExists
	}
	m.data[collection][id] = cloneRaw(doc)
	snapshot, version := m.snapshot(collection)
	m.mu.Unlock()

	m.persist(collection, version, snapshot)
	return nil
}

func (m *MemStore) Put(_ context.Context, collection, id string, doc json.RawMessage) error {
	if !docstore.IsObject(doc) {
		return docstore.ErrInvalidDocument
	}

	m.mu.Lock()
	if m.data[collection] == nil {
		m.data[collection] = make(map[string]json.RawMessage)
	}
	m.data[collection][id] = cloneRaw(doc)
	snapshot, version := m.snapshot(collection)
	m.mu.Unlock()

	m.persist(collection, version, snapshot)
	return nil
}

func (m *MemStore) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	docs, ok := m.data[collection]
	if !ok {
		m.mu.Unlock()
		return nil
	}
	delete(docs, id)
	snapshot, version := m.snapshot(collection)
	m.mu.Unlock()

	m.persist(collection, version, snapshot)
	return nil
}

func (m *MemStore) Update(_ context.Context, collection, id string, fn docstore.UpdateFunc) error {
	m.mu.Lock()
	docs, ok := m.data[collection]
	if !ok {
		m.mu.Unlock()
		return docstore.ErrNotFound
	}
	current, ok := docs[id]
	if !ok {
		m.mu.Unlock()
		return docstore.ErrNotFound
	}

	next, err := fn(cloneRaw(current))
	if err != nil {
		m.mu.Unlock()
		return err
	}
	if !docstore.IsObject(next) {
		m.mu.Unlock()
		return docstore.ErrInvalidDocument
	}
	docs[id] = cloneRaw(next)
	snapshot, version := m.snapshot(collection)
	m.mu.Unlock()

	m.persist(collection, version, snapshot)
	return nil
}

func (m *MemStore) Collections(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]string, 0, len(m.data))
	for name := range m.data {
		list = append(list, name)
	}
	sort.Strings(list)
	return list, nil
}

func (m *MemStore) Dump(_ context.Context, collection string) (map[string]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.data[collection]; !ok {
		return nil, docstore.ErrNotFound
	}
	return m.copyCollection(collection), nil
}

// snapshot copies a collection and stamps it with the next write version.
// It MUST be called while holding m.mu.Lock.
func (m *MemStore) snapshot(collection string) (map[string]json.RawMessage, uint64) {
	m.versions[collection]++
	return m.copyCollection(collection), m.versions[collection]
}

// persist writes a collection snapshot in the background.
func (m *MemStore) persist(collection string, version uint64, snapshot map[string]json.RawMessage) {
	if m.persister == nil {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if err := m.persister.SaveCollection(collection, version, snapshot); err != nil {
			slog.Error("persisting collection", "collection", collection, "error", err)
		}
	}()
}

// copyCollection creates a deep copy of a collection.
// It MUST be called while holding m.mu.Lock or m.mu.RLock.
func (m *MemStore) copyCollection(collection string) map[string]json.RawMessage {
	original := m.data[collection]
	out := make(map[string]json.RawMessage, len(original))
	for id, doc := range original {
		out[id] = cloneRaw(doc)
	}
	return out
}

func cloneRaw(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}
