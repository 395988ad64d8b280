// Package memory provides an in-process storage.KVEngine.
//
// Values live in a sharded concurrent map and are lost on Close. It is the
// engine used by mock mode and by tests that do not need Badger.
package memory

import (
	"bytes"
	"context"
	"sort"
	"sync/atomic"

	"github.com/yndnr/gamesvc-go/internal/storage"
	"github.com/yndnr/gamesvc-go/pkg/cmap"
)

// Engine is an in-memory KVEngine.
type Engine struct {
	items  *cmap.Map[string, []byte]
	closed atomic.Bool
}

var _ storage.KVEngine = (*Engine)(nil)

// New creates an empty engine.
func New() *Engine {
	return &Engine{items: cmap.New[string, []byte]()}
}

// Get retrieves a copy of the value for key.
func (e *Engine) Get(_ context.Context, key []byte) ([]byte, error) {
	if e.closed.Load() {
		return nil, storage.ErrClosed
	}
	v, ok := e.items.Get(string(key))
	if !ok {
		return nil, storage.ErrKeyNotFound
	}
	return bytes.Clone(v), nil
}

// Set stores a copy of value.
func (e *Engine) Set(_ context.Context, key, value []byte) error {
	if e.closed.Load() {
		return storage.ErrClosed
	}
	e.items.Set(string(key), bytes.Clone(value))
	return nil
}

// Delete removes key.
func (e *Engine) Delete(_ context.Context, key []byte) error {
	if e.closed.Load() {
		return storage.ErrClosed
	}
	e.items.Delete(string(key))
	return nil
}

// Scan visits keys with prefix in ascending key order.
func (e *Engine) Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error {
	if e.closed.Load() {
		return storage.ErrClosed
	}

	p := string(prefix)
	var keys []string
	e.items.Range(func(k string, _ []byte) bool {
		if len(k) >= len(p) && k[:len(p)] == p {
			keys = append(keys, k)
		}
		return true
	})
	sort.Strings(keys)

	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		v, ok := e.items.Get(k)
		if !ok {
			continue
		}
		if !fn([]byte(k), bytes.Clone(v)) {
			break
		}
	}
	return nil
}

// GC is a no-op.
func (e *Engine) GC(context.Context) (uint64, error) {
	return 0, nil
}

// Stats reports the key count and the summed value size.
func (e *Engine) Stats(context.Context) (*storage.KVStats, error) {
	if e.closed.Load() {
		return nil, storage.ErrClosed
	}
	var size uint64
	var keys uint64
	e.items.Range(func(k string, v []byte) bool {
		keys++
		size += uint64(len(k) + len(v))
		return true
	})
	return &storage.KVStats{TotalKeys: keys, TotalSize: size}, nil
}

// Close drops all data.
func (e *Engine) Close() error {
	if e.closed.CompareAndSwap(false, true) {
		e.items.Clear()
	}
	return nil
}
