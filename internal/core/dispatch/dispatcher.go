// Package dispatch marshals bridge callbacks onto the owner's context.
//
// Bridge callbacks arrive on arbitrary goroutines. They are enqueued on a
// Dispatcher and run in arrival order when the owner drains it, once per
// tick. Ordering holds per dispatcher only.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/yndnr/gamesvc-go/internal/telemetry/logger"
)

// DefaultQueueSize is the default callback backlog bound.
const DefaultQueueSize = 1024

var (
	// ErrQueueFull is returned by Enqueue when the backlog bound is reached.
	ErrQueueFull = errors.New("dispatch: queue full")

	// ErrClosed is returned by Enqueue after Close.
	ErrClosed = errors.New("dispatch: closed")
)

// Observer receives dispatcher statistics. *metric.Metrics satisfies it.
type Observer interface {
	SetQueueDepth(n int)
	IncDispatchPanics()
}

type nopObserver struct{}

func (nopObserver) SetQueueDepth(int)  {}
func (nopObserver) IncDispatchPanics() {}

// Config holds dispatcher configuration.
type Config struct {
	// QueueSize bounds the backlog. Zero means DefaultQueueSize.
	QueueSize int
	Logger    logger.Logger
	Observer  Observer
}

// Dispatcher is a bounded FIFO of callbacks.
type Dispatcher struct {
	size     int
	logger   logger.Logger
	observer Observer

	mu     sync.Mutex
	queue  []func()
	closed bool
	wake   chan struct{}
}

// New creates a dispatcher.
func New(cfg Config) *Dispatcher {
	size := cfg.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	l := cfg.Logger
	if l == nil {
		l = logger.Default()
	}
	var obs Observer = nopObserver{}
	if cfg.Observer != nil {
		obs = cfg.Observer
	}
	return &Dispatcher{
		size:     size,
		logger:   l.With("component", "dispatch"),
		observer: obs,
		wake:     make(chan struct{}, 1),
	}
}

// Enqueue appends fn to the queue. Safe for concurrent use.
func (d *Dispatcher) Enqueue(fn func()) error {
	if fn == nil {
		return nil
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrClosed
	}
	if len(d.queue) >= d.size {
		d.mu.Unlock()
		return ErrQueueFull
	}
	d.queue = append(d.queue, fn)
	depth := len(d.queue)
	d.mu.Unlock()

	d.observer.SetQueueDepth(depth)
	select {
	case d.wake <- struct{}{}:
	default:
	}
	return nil
}

// Drain runs every callback queued at the moment of the call and returns how
// many ran. Callbacks enqueued while draining wait for the next Drain.
func (d *Dispatcher) Drain() int {
	d.mu.Lock()
	batch := d.queue
	d.queue = nil
	d.mu.Unlock()

	d.observer.SetQueueDepth(0)
	for _, fn := range batch {
		d.run(fn)
	}
	return len(batch)
}

func (d *Dispatcher) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.observer.IncDispatchPanics()
			d.logger.Error("callback panicked", "panic", fmt.Sprint(r))
		}
	}()
	fn()
}

// Len returns the current backlog.
func (d *Dispatcher) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// Run drains once per tick until ctx ends, then drains a final time.
// A non-positive tick drains as soon as work arrives.
func (d *Dispatcher) Run(ctx context.Context, tick time.Duration) {
	if tick <= 0 {
		for {
			select {
			case <-ctx.Done():
				d.Drain()
				return
			case <-d.wake:
				d.Drain()
			}
		}
	}

	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			d.Drain()
			return
		case <-ticker.C:
			d.Drain()
		}
	}
}

// Close rejects further work. Queued callbacks still run on the next Drain.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
}

// Closed reports whether Close has been called.
func (d *Dispatcher) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}
