package mock

import (
	"context"
	"sort"
	"sync"

	"github.com/yndnr/gamesvc-go/internal/config"
	"github.com/yndnr/gamesvc-go/internal/core/domain"
	"github.com/yndnr/gamesvc-go/internal/core/observer"
	"github.com/yndnr/gamesvc-go/internal/core/provider"
)

// Events is the mock events provider. Counters are created on first
// increment and applied immediately.
type Events struct {
	core

	mu       sync.Mutex
	counters map[string]int64

	onError observer.List[func(*domain.Error)]
}

var _ provider.Events = (*Events)(nil)

// NewEvents creates the provider.
func NewEvents(settings config.MockSettings, opts Options) *Events {
	e := &Events{counters: make(map[string]int64)}
	e.init(domain.SubsystemEvents, settings, opts)
	return e
}

func (e *Events) simulatedError(id string) error {
	if !e.settings.SimulateErrors {
		return nil
	}
	err := domain.NewError(domain.SubsystemEvents, domain.CodeNetworkError, "Simulated network error", id)
	e.onError.Each(func(fn func(*domain.Error)) { fn(err) })
	return err
}

// Increment adds steps to id's counter.
func (e *Events) Increment(ctx context.Context, id string, steps int) error {
	if err := domain.ValidateEventIncrement(id, steps); err != nil {
		return err
	}
	if err := e.wait(ctx, e.delay/4); err != nil {
		return err
	}
	if err := e.simulatedError(id); err != nil {
		return err
	}
	e.mu.Lock()
	e.counters[id] += int64(steps)
	total := e.counters[id]
	e.mu.Unlock()
	e.log.Debug("mock event incremented", "event_id", id, "steps", steps, "total", total)
	return nil
}

// Flush is a no-op; increments are never buffered.
func (e *Events) Flush(ctx context.Context) error {
	if e.closed.Load() {
		return domain.ErrClosed
	}
	return nil
}

func (e *Events) event(id string) domain.Event {
	return domain.Event{
		ID:          id,
		Name:        id,
		Description: "Mock event",
		Value:       e.counters[id],
		Visible:     true,
	}
}

// LoadAll returns every counter, ordered by id.
func (e *Events) LoadAll(ctx context.Context) ([]domain.Event, error) {
	if err := e.wait(ctx, e.delay); err != nil {
		return nil, err
	}
	if err := e.simulatedError(""); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]string, 0, len(e.counters))
	for id := range e.counters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	events := make([]domain.Event, 0, len(ids))
	for _, id := range ids {
		events = append(events, e.event(id))
	}
	return events, nil
}

// Load returns id's counter. An unknown id reports zero.
func (e *Events) Load(ctx context.Context, id string) (*domain.Event, error) {
	if id == "" {
		return nil, domain.ErrMissingArgument.WithDetails("event id is required")
	}
	if err := e.wait(ctx, e.delay/2); err != nil {
		return nil, err
	}
	if err := e.simulatedError(id); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	ev := e.event(id)
	return &ev, nil
}

// OnError registers fn for every simulated error.
func (e *Events) OnError(fn func(*domain.Error)) { e.onError.Add(fn) }
