// Package storage provides the key-value persistence layer behind the data store.
//
// Every value is an opaque byte slice, in practice a JSON document holding a
// whole collection. Backends: badger (embedded, default), redis and SQL via gorm.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"rtrove/internal/observability"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("storage: key not found")

// KV is a flat key-value store.
type KV interface {
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	// Apply commits every write staged in b atomically: all land or none do.
	Apply(ctx context.Context, b *Batch) error
	// Keys lists the keys starting with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
	// Backend names the implementation for logs and metrics.
	Backend() string
	Close() error
}

// Op is one staged write. Delete ops carry no value.
type Op struct {
	Key    string
	Value  []byte
	Delete bool
}

// Batch stages writes for a single atomic commit. A later write to the
// same key replaces the earlier one in place.
type Batch struct {
	ops   []Op
	index map[string]int
}

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{index: make(map[string]int)}
}

// Put JSON-encodes v and stages it under key.
func (b *Batch) Put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	b.PutRaw(key, data)
	return nil
}

// PutRaw stages an already encoded value.
func (b *Batch) PutRaw(key string, value []byte) {
	b.stage(Op{Key: key, Value: value})
}

// Delete stages the removal of key.
func (b *Batch) Delete(key string) {
	b.stage(Op{Key: key, Delete: true})
}

func (b *Batch) stage(op Op) {
	if b.index == nil {
		b.index = make(map[string]int)
	}
	if i, ok := b.index[op.Key]; ok {
		b.ops[i] = op
		return
	}
	b.index[op.Key] = len(b.ops)
	b.ops = append(b.ops, op)
}

// Ops returns the staged writes in staging order.
func (b *Batch) Ops() []Op {
	if b == nil {
		return nil
	}
	out := make([]Op, len(b.ops))
	copy(out, b.ops)
	return out
}

// Len returns the number of staged writes.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.ops)
}

// commit wraps a backend commit with a span, latency and error metrics.
func commit(ctx context.Context, backend string, b *Batch, apply func(context.Context) error) error {
	if b.Len() == 0 {
		return nil
	}

	ctx, span := observability.StartCommitSpan(ctx, backend, "apply", b.Len())
	done := observability.TrackCommit(backend)
	err := apply(ctx)
	done()
	if err != nil {
		observability.StorageErrors.WithLabelValues(backend, "apply").Inc()
	}
	observability.EndSpan(span, err)
	return err
}
