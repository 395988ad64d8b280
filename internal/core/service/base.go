package service

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/yndnr/gamesvc-go/internal/config"
	"github.com/yndnr/gamesvc-go/internal/core/domain"
	"github.com/yndnr/gamesvc-go/internal/core/pending"
	"github.com/yndnr/gamesvc-go/internal/telemetry/logger"
	"github.com/yndnr/gamesvc-go/internal/telemetry/metric"
)

// Poster runs bridge callbacks on the owner's goroutine.
// *dispatch.Dispatcher satisfies it.
type Poster interface {
	Enqueue(fn func()) error
}

// inline runs callbacks on the calling goroutine.
type inline struct{}

func (inline) Enqueue(fn func()) error {
	fn()
	return nil
}

// Deps carries the collaborators shared by every controller.
type Deps struct {
	// Dispatcher marshals bridge callbacks. Nil runs them on the bridge's
	// goroutine.
	Dispatcher Poster
	Logger     logger.Logger
	Metrics    *metric.Metrics

	// Timeout bounds the bridge calls that have a bound. Zero means
	// config.DefaultBridgeTimeout.
	Timeout time.Duration
}

// base is the state every controller shares.
type base struct {
	subsystem domain.Subsystem
	log       logger.Logger
	poster    Poster
	metrics   *metric.Metrics
	recorder  *metric.SubsystemRecorder
	timeout   time.Duration
	closed    atomic.Bool

	// dropWarn throttles the warning for callbacks lost to a full queue.
	dropWarn rate.Sometimes
}

func (b *base) init(subsystem domain.Subsystem, d Deps) {
	b.subsystem = subsystem
	b.log = logger.ForSubsystem(d.Logger, string(subsystem))
	b.poster = d.Dispatcher
	b.metrics = d.Metrics
	b.recorder = d.Metrics.Subsystem(string(subsystem))
	b.timeout = d.Timeout
	b.dropWarn.Interval = time.Second
	if b.poster == nil {
		b.poster = inline{}
	}
	if b.timeout <= 0 {
		b.timeout = config.DefaultBridgeTimeout
	}
}

// pendingOpts labels slots and tables with the controller's logger and
// recorder.
func (b *base) pendingOpts() []pending.Option {
	return []pending.Option{pending.WithLogger(b.log), pending.WithRecorder(b.recorder)}
}

// post marshals a bridge callback. A callback that cannot be queued is
// dropped; the call waiting on it ends by timeout, cancellation or Close.
func (b *base) post(callback string, fn func()) {
	if err := b.poster.Enqueue(fn); err != nil {
		b.dropWarn.Do(func() {
			b.log.Warn("dropping bridge callback", "callback", callback, "error", err)
		})
	}
}

// begin checks that a new call may start.
func (b *base) begin(ctx context.Context) error {
	if b.closed.Load() {
		return domain.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return domain.ErrCanceled.WithCause(err)
	}
	return nil
}

// vendorError builds and logs the error reported by a bridge callback.
func (b *base) vendorError(code int, message, subject string) *domain.Error {
	e := domain.NewError(b.subsystem, code, message, subject)
	b.log.Warn("bridge reported an error",
		"code", code, "kind", e.Kind().String(), "message", message, "subject", subject)
	return e
}

// track starts timing op. The returned func records the outcome held by
// err; call it deferred with the named error result.
func (b *base) track(op string) func(err *error) {
	start := time.Now()
	return func(err *error) {
		b.observe(op, start, *err)
	}
}

// observe records a finished call.
func (b *base) observe(op string, start time.Time, err error) {
	b.recorder.Operation(op, outcome(err), time.Since(start))
	if err != nil {
		b.log.Debug("operation failed", "op", op, "error", err)
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metric.OutcomeOK
	case domain.IsTimeout(err):
		return metric.OutcomeTimeout
	case domain.IsCanceled(err):
		return metric.OutcomeCanceled
	}
	return metric.OutcomeError
}

// await waits for c, bounded by timeout when it is positive. A completion
// installed after Close started is canceled at once.
func await[T any](ctx context.Context, b *base, c *pending.Completion[T], timeout time.Duration) (T, error) {
	if b.closed.Load() {
		c.Cancel()
	}
	return c.WaitTimeout(ctx, timeout)
}
