package pending

import (
	"sync"

	"github.com/yndnr/gamesvc-go/internal/telemetry/logger"
)

// Recorder observes completion lifecycle. *metric.SubsystemRecorder satisfies it.
type Recorder interface {
	CompletionReplaced(op string)
	PendingChanged(op string, delta int)
}

type nopRecorder struct{}

func (nopRecorder) CompletionReplaced(string)  {}
func (nopRecorder) PendingChanged(string, int) {}

// Option configures a Slot or Table.
type Option func(*options)

type options struct {
	logger   logger.Logger
	recorder Recorder
}

// WithLogger sets the logger used to report replaced completions.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		logger:   logger.Default(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Slot holds at most one outstanding completion for an operation kind.
//
// Replace cancels the previous completion if it is still pending; bridge
// callbacks settle whichever completion is current.
type Slot[T any] struct {
	name string
	opts options

	mu      sync.Mutex
	current *Completion[T]
}

// NewSlot creates an empty slot. name labels logs and metrics.
func NewSlot[T any](name string, opts ...Option) *Slot[T] {
	return &Slot[T]{
		name: name,
		opts: buildOptions(opts),
	}
}

// Name returns the operation name of the slot.
func (s *Slot[T]) Name() string {
	return s.name
}

// Replace installs a fresh completion and cancels the stale one.
func (s *Slot[T]) Replace() *Completion[T] {
	c := New[T]()
	c.onSettle(func() { s.opts.recorder.PendingChanged(s.name, -1) })
	s.opts.recorder.PendingChanged(s.name, 1)

	s.mu.Lock()
	old := s.current
	s.current = c
	s.mu.Unlock()

	if old != nil && old.Cancel() {
		s.opts.logger.Warn("pending operation replaced by a newer call", "op", s.name)
		s.opts.recorder.CompletionReplaced(s.name)
	}
	return c
}

// Current returns the current completion, or nil.
func (s *Slot[T]) Current() *Completion[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Pending reports whether the current completion is unsettled.
func (s *Slot[T]) Pending() bool {
	c := s.Current()
	return c != nil && !c.Settled()
}

// Resolve settles the current completion with a value.
func (s *Slot[T]) Resolve(val T) bool {
	if c := s.Current(); c != nil {
		return c.Resolve(val)
	}
	return false
}

// Reject settles the current completion with an error.
func (s *Slot[T]) Reject(err error) bool {
	if c := s.Current(); c != nil {
		return c.Reject(err)
	}
	return false
}

// Cancel cancels the current completion.
func (s *Slot[T]) Cancel() bool {
	if c := s.Current(); c != nil {
		return c.Cancel()
	}
	return false
}
