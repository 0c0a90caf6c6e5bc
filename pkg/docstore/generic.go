package docstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// Get retrieves a document and decodes it into T.
func Get[T any](ctx context.Context, r Reader, collection, id string) (T, error) {
	var target T
	raw, err := r.Get(ctx, collection, id)
	if err != nil {
		return target, err
	}
	if err := json.Unmarshal(raw, &target); err != nil {
		return target, fmt.Errorf("decoding %s/%s: %w", collection, id, err)
	}
	return target, nil
}

// Put encodes val and stores it under collection/id.
func Put[T any](ctx context.Context, w Writer, collection, id string, val T) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", collection, id, err)
	}
	return w.Put(ctx, collection, id, raw)
}

// Insert encodes val and stores it as a new document.
func Insert[T any](ctx context.Context, w Writer, collection, id string, val T) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return fmt.Errorf("encoding %s/%s: %w", collection, id, err)
	}
	return w.Insert(ctx, collection, id, raw)
}

// List decodes every document of a collection into T.
func List[T any](ctx context.Context, r Reader, collection string) ([]T, error) {
	raws, err := r.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decoding %s document: %w", collection, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Mutate atomically applies fn to the decoded document and stores the result.
// The value written is returned. When fn fails nothing is written and the
// error is returned unchanged so callers can match on it.
func Mutate[T any](ctx context.Context, u Updater, collection, id string, fn func(*T) error) (T, error) {
	var result T
	err := u.Update(ctx, collection, id, func(current json.RawMessage) (json.RawMessage, error) {
		var v T
		if err := json.Unmarshal(current, &v); err != nil {
			return nil, fmt.Errorf("decoding %s/%s: %w", collection, id, err)
		}
		if err := fn(&v); err != nil {
			return nil, err
		}
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encoding %s/%s: %w", collection, id, err)
		}
		result = v
		return raw, nil
	})
	return result, err
}

// IsObject reports whether raw holds a JSON object.
func IsObject(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		case '{':
			return true
		default:
			return false
		}
	}
	return false
}
