package pending

import (
	"fmt"

	"github.com/yndnr/gamesvc-go/internal/core/domain"
	"github.com/yndnr/gamesvc-go/pkg/cmap"
)

// Table holds at most one outstanding completion per key.
//
// Settling a completion removes its key, so the table only ever contains
// unsettled entries.
type Table[K comparable, T any] struct {
	name    string
	opts    options
	entries *cmap.Map[K, *Completion[T]]
}

// NewTable creates an empty table. name labels logs and metrics.
func NewTable[K comparable, T any](name string, opts ...Option) *Table[K, T] {
	return &Table[K, T]{
		name:    name,
		opts:    buildOptions(opts),
		entries: cmap.New[K, *Completion[T]](cmap.WithShardCount(8)),
	}
}

// Replace installs a fresh completion for key and cancels the stale one.
func (t *Table[K, T]) Replace(key K) *Completion[T] {
	c := New[T]()
	c.onSettle(func() {
		t.entries.DeleteIf(key, func(cur *Completion[T]) bool { return cur == c })
		t.opts.recorder.PendingChanged(t.name, -1)
	})
	t.opts.recorder.PendingChanged(t.name, 1)

	old, loaded := t.entries.Swap(key, c)
	if loaded && old.Cancel() {
		t.opts.logger.Warn("pending operation replaced by a newer call",
			"op", t.name, "key", fmt.Sprint(key))
		t.opts.recorder.CompletionReplaced(t.name)
	}
	return c
}

// Get returns the pending completion for key.
func (t *Table[K, T]) Get(key K) (*Completion[T], bool) {
	return t.entries.Get(key)
}

// Resolve settles the completion for key with a value.
func (t *Table[K, T]) Resolve(key K, val T) bool {
	if c, ok := t.entries.Get(key); ok {
		return c.Resolve(val)
	}
	return false
}

// Reject settles the completion for key with an error.
func (t *Table[K, T]) Reject(key K, err error) bool {
	if c, ok := t.entries.Get(key); ok {
		return c.Reject(err)
	}
	return false
}

// RejectAll settles every pending completion with err and returns how many
// it settled.
func (t *Table[K, T]) RejectAll(err error) int {
	n := 0
	for _, c := range t.entries.Values() {
		if c.Reject(err) {
			n++
		}
	}
	return n
}

// CancelAll cancels every pending completion.
func (t *Table[K, T]) CancelAll() int {
	return t.RejectAll(domain.ErrCanceled)
}

// Len returns the number of pending completions.
func (t *Table[K, T]) Len() int {
	return t.entries.Count()
}

// Keys returns the keys with pending completions.
func (t *Table[K, T]) Keys() []K {
	return t.entries.Keys()
}
