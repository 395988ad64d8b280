// Package observer holds registered callback lists.
package observer

import (
	"slices"
	"sync"
)

// List is a list of callbacks of type F. The zero value is ready to use.
type List[F any] struct {
	mu  sync.Mutex
	fns []F
}

// Add registers fn.
func (l *List[F]) Add(fn F) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fns = append(l.fns, fn)
}

// Each passes every registered callback to call, in registration order.
// Callbacks registered while Each runs are seen by the next Each.
func (l *List[F]) Each(call func(F)) {
	l.mu.Lock()
	fns := slices.Clone(l.fns)
	l.mu.Unlock()
	for _, fn := range fns {
		call(fn)
	}
}

// Len returns the number of registered callbacks.
func (l *List[F]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.fns)
}
