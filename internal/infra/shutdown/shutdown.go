package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/yndnr/gamesvc-go/internal/telemetry/logger"
)

// DefaultTimeout bounds the total time spent in hooks.
const DefaultTimeout = 10 * time.Second

// WithSignals returns a context canceled on SIGINT or SIGTERM.
func WithSignals(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

type hook struct {
	name string
	fn   func(context.Context) error
}

// Handler runs cleanup hooks once.
type Handler struct {
	timeout time.Duration
	logger  logger.Logger

	mu    sync.Mutex
	hooks []hook
	once  sync.Once
	err   error
	done  chan struct{}
}

// NewHandler creates a handler. A timeout <= 0 uses DefaultTimeout.
func NewHandler(timeout time.Duration, l logger.Logger) *Handler {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if l == nil {
		l = logger.Default()
	}
	return &Handler{
		timeout: timeout,
		logger:  l,
		done:    make(chan struct{}),
	}
}

// OnShutdown registers a hook. Hooks run in reverse order of registration.
func (h *Handler) OnShutdown(name string, fn func(context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook{name: name, fn: fn})
}

// OnClose registers a hook for a plain Close method.
func (h *Handler) OnClose(name string, closeFn func() error) {
	h.OnShutdown(name, func(context.Context) error { return closeFn() })
}

// Wait blocks until ctx is done, then runs the hooks.
func (h *Handler) Wait(ctx context.Context) error {
	<-ctx.Done()
	return h.Shutdown()
}

// Shutdown runs every hook once and returns their joined errors.
// Later calls return the first result.
func (h *Handler) Shutdown() error {
	h.once.Do(func() {
		defer close(h.done)

		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()

		h.mu.Lock()
		hooks := make([]hook, len(h.hooks))
		copy(hooks, h.hooks)
		h.mu.Unlock()

		var errs []error
		for i := len(hooks) - 1; i >= 0; i-- {
			start := time.Now()
			if err := hooks[i].fn(ctx); err != nil {
				h.logger.Error("shutdown hook failed", "hook", hooks[i].name, "error", err)
				errs = append(errs, fmt.Errorf("%s: %w", hooks[i].name, err))
				continue
			}
			h.logger.Debug("shutdown hook done", "hook", hooks[i].name, "duration", time.Since(start))
		}
		h.err = errors.Join(errs...)
	})
	return h.err
}

// Done returns a channel closed once Shutdown has finished.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}
