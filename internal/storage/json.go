package storage

import (
	"context"
	"encoding/json"
	"errors"

	"rtrove/internal/observability"
)

var storeLog = observability.NewStoreLogger("storage")

// LoadJSON reads key and decodes it into a T. A missing key and a value
// that does not parse both yield the zero T with found=false; only backend
// failures are returned as errors.
func LoadJSON[T any](ctx context.Context, kv KV, key string) (T, bool, error) {
	var out T

	data, err := kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		storeLog.LogLoad(ctx, key, false)
		return out, false, nil
	}
	if err != nil {
		return out, false, err
	}

	if err := json.Unmarshal(data, &out); err != nil {
		storeLog.LogWarn(ctx, "discarding corrupt value", map[string]any{
			"key":   key,
			"error": err.Error(),
		})
		var zero T
		return zero, false, nil
	}

	storeLog.LogLoad(ctx, key, true)
	return out, true, nil
}

// SaveJSON encodes v and writes it to key.
func SaveJSON(ctx context.Context, kv KV, key string, v any) error {
	b := NewBatch()
	if err := b.Put(key, v); err != nil {
		return err
	}
	return kv.Apply(ctx, b)
}
