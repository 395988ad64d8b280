package mock

import (
	"context"
	"crypto/rand"
	"strings"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/gamesvc-go/internal/config"
	"github.com/yndnr/gamesvc-go/internal/core/domain"
	"github.com/yndnr/gamesvc-go/internal/storage"
	"github.com/yndnr/gamesvc-go/internal/telemetry/logger"
)

// DefaultDelay is the simulated latency of every mock call.
const DefaultDelay = 200 * time.Millisecond

// Options configures the mock providers.
type Options struct {
	Logger logger.Logger

	// Delay is the simulated latency. Zero means DefaultDelay; a negative
	// value disables it. Sign-in waits MockSettings.AuthDelay instead.
	Delay time.Duration

	// Prefs persists unlocked achievement markers. Nil keeps them in memory.
	Prefs *storage.Prefs

	// Now replaces time.Now.
	Now func() time.Time
}

// core is the state every mock provider shares.
type core struct {
	settings config.MockSettings
	log      logger.Logger
	delay    time.Duration
	now      func() time.Time
	closed   atomic.Bool
}

func (c *core) init(subsystem domain.Subsystem, settings config.MockSettings, opts Options) {
	c.settings = settings
	c.log = logger.ForSubsystem(opts.Logger, string(subsystem)).With("provider", "mock")
	c.delay = opts.Delay
	c.now = opts.Now
	if c.delay == 0 {
		c.delay = DefaultDelay
	}
	if c.now == nil {
		c.now = time.Now
	}
}

// wait simulates latency d, failing early when the provider is closed or
// ctx ends.
func (c *core) wait(ctx context.Context, d time.Duration) error {
	if c.closed.Load() {
		return domain.ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return domain.ErrCanceled.WithCause(err)
	}
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return domain.ErrCanceled.WithCause(ctx.Err())
	}
	if c.closed.Load() {
		return domain.ErrClosed
	}
	return nil
}

func (c *core) nowMillis() int64 {
	return c.now().UnixMilli()
}

func (c *core) Close() error {
	c.closed.Store(true)
	return nil
}

func newID() string {
	return strings.ToLower(ulid.MustNew(ulid.Now(), ulid.Monotonic(rand.Reader, 0)).String())
}
