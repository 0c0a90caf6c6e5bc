package engine

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Persistence handles the disk I/O for the MemStore.
// Each collection lives in its own <collection>.json file.
type Persistence struct {
	DataDir string
	mu      sync.Mutex // Protects concurrent writes to the filesystem
	written map[string]uint64
}

// NewPersistence initializes a persistence handler.
func NewPersistence(dir string) (*Persistence, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return &Persistence{
		DataDir: dir,
		written: make(map[string]uint64),
	}, nil
}

// SaveCollection writes a single collection to a JSON file atomically.
// Background writers may finish out of order, so a snapshot whose version is
// older than the last one written for the collection is dropped.
func (p *Persistence) SaveCollection(collection string, version uint64, docs map[string]json.RawMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if version < p.written[collection] {
		return nil
	}

	filePath := filepath.Join(p.DataDir, collection+".json")
	tempPath := filePath + ".tmp"

	bytes, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding collection %s: %w", collection, err)
	}

	if err := os.WriteFile(tempPath, bytes, 0644); err != nil {
		return fmt.Errorf("writing collection %s: %w", collection, err)
	}

	// Either the old file or the new one survives a crash, never a torn write.
	if err := os.Rename(tempPath, filePath); err != nil {
		return fmt.Errorf("replacing collection %s: %w", collection, err)
	}
	p.written[collection] = version
	return nil
}

// LoadAll returns every collection found in the data directory.
func (p *Persistence) LoadAll() (map[string]map[string]json.RawMessage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	all := make(map[string]map[string]json.RawMessage)

	files, err := os.ReadDir(p.DataDir)
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ".json" {
			continue
		}
		collection := strings.TrimSuffix(file.Name(), ".json")

		content, err := os.ReadFile(filepath.Join(p.DataDir, file.Name()))
		if err != nil {
			slog.Warn("skipping unreadable collection file", "file", file.Name(), "error", err)
			continue
		}

		var docs map[string]json.RawMessage
		if err := json.Unmarshal(content, &docs); err != nil {
			slog.Warn("skipping corrupt collection file", "file", file.Name(), "error", err)
			continue
		}
		all[collection] = docs
	}
	return all, nil
}
