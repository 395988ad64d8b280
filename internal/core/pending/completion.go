package pending

import (
	"context"
	"sync"
	"time"

	"github.com/yndnr/gamesvc-go/internal/core/domain"
)

// Completion is a settable, single-assignment result.
//
// The first Resolve, Reject or Cancel wins; later calls return false.
type Completion[T any] struct {
	mu      sync.Mutex
	done    chan struct{}
	settled bool
	val     T
	err     error
	hooks   []func()
}

// New creates an unsettled completion.
func New[T any]() *Completion[T] {
	return &Completion[T]{done: make(chan struct{})}
}

// onSettle registers fn to run once the completion settles. It must be
// called before the completion is shared.
func (c *Completion[T]) onSettle(fn func()) {
	c.hooks = append(c.hooks, fn)
}

func (c *Completion[T]) settle(val T, err error) bool {
	c.mu.Lock()
	if c.settled {
		c.mu.Unlock()
		return false
	}
	c.settled = true
	c.val = val
	c.err = err
	close(c.done)
	hooks := c.hooks
	c.hooks = nil
	c.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
	return true
}

// Resolve settles the completion with a value.
func (c *Completion[T]) Resolve(val T) bool {
	return c.settle(val, nil)
}

// Reject settles the completion with an error.
func (c *Completion[T]) Reject(err error) bool {
	if err == nil {
		err = domain.ErrInvalidArgument.WithDetails("nil rejection")
	}
	var zero T
	return c.settle(zero, err)
}

// Cancel settles the completion as canceled.
func (c *Completion[T]) Cancel() bool {
	return c.Reject(domain.ErrCanceled)
}

// Done is closed once the completion settles.
func (c *Completion[T]) Done() <-chan struct{} {
	return c.done
}

// Settled reports whether the completion has settled.
func (c *Completion[T]) Settled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settled
}

// Result returns the settled value. It must only be called after Done is closed.
func (c *Completion[T]) Result() (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.val, c.err
}

// Wait blocks until the completion settles or ctx ends. When ctx ends first
// the completion is canceled; the in-flight bridge call is left alone.
func (c *Completion[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-c.done:
	case <-ctx.Done():
		c.Reject(domain.ErrCanceled.WithCause(ctx.Err()))
	}
	return c.Result()
}

// WaitTimeout is Wait bounded by d. On expiry the completion is rejected
// with a timeout error. A non-positive d waits without a bound.
func (c *Completion[T]) WaitTimeout(ctx context.Context, d time.Duration) (T, error) {
	if d <= 0 {
		return c.Wait(ctx)
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-c.done:
	case <-ctx.Done():
		c.Reject(domain.ErrCanceled.WithCause(ctx.Err()))
	case <-timer.C:
		c.Reject(domain.ErrTimeout.WithDetails("no bridge response after " + d.String()))
	}
	return c.Result()
}
