package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/yndnr/gamesvc-go/internal/bridge"
	"github.com/yndnr/gamesvc-go/internal/config"
	"github.com/yndnr/gamesvc-go/internal/core/domain"
	"github.com/yndnr/gamesvc-go/internal/core/observer"
	"github.com/yndnr/gamesvc-go/internal/core/pending"
	"github.com/yndnr/gamesvc-go/internal/core/provider"
)

// EventController batches event increments and loads event counters over
// the bridge.
//
// Increments are summed per event and sent once the flush interval after
// the first buffered increment has passed, or earlier on Flush, LoadAll,
// Load or Close.
type EventController struct {
	base
	api      bridge.Events
	interval time.Duration

	mu     sync.Mutex
	buffer map[string]int
	timer  *time.Timer

	loadAll *pending.Slot[[]domain.Event]
	load    *pending.Table[string, *domain.Event]

	onError observer.List[func(*domain.Error)]
}

var _ provider.Events = (*EventController)(nil)

// NewEventController creates the controller. An interval <= 0 means
// config.DefaultFlushInterval.
func NewEventController(api bridge.Events, interval time.Duration, deps Deps) *EventController {
	if interval <= 0 {
		interval = config.DefaultFlushInterval
	}
	c := &EventController{
		api:      api,
		interval: interval,
		buffer:   make(map[string]int),
	}
	c.init(domain.SubsystemEvents, deps)

	opts := c.pendingOpts()
	c.loadAll = pending.NewSlot[[]domain.Event]("load_all", opts...)
	c.load = pending.NewTable[string, *domain.Event]("load", opts...)

	api.SetCallback(&eventCallbacks{c: c})
	return c
}

// Increment buffers steps for id.
func (c *EventController) Increment(ctx context.Context, id string, steps int) (err error) {
	defer c.track("increment")(&err)

	if err := domain.ValidateEventIncrement(id, steps); err != nil {
		return err
	}
	if err := c.begin(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Close flushes under mu after marking closed, so nothing buffered
	// here can outlive it.
	if c.closed.Load() {
		return domain.ErrClosed
	}
	c.buffer[id] += steps
	if c.timer == nil {
		c.timer = time.AfterFunc(c.interval, c.flushBuffered)
	}
	return nil
}

// Pending returns the buffered steps for id.
func (c *EventController) Pending(id string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buffer[id]
}

// Flush sends every buffered increment now.
func (c *EventController) Flush(ctx context.Context) (err error) {
	defer c.track("flush")(&err)

	if err := c.begin(ctx); err != nil {
		return err
	}
	c.flushBuffered()
	return nil
}

func (c *EventController) flushBuffered() {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if len(c.buffer) == 0 {
		c.mu.Unlock()
		return
	}
	batch := c.buffer
	c.buffer = make(map[string]int)
	c.mu.Unlock()

	ids := make([]string, 0, len(batch))
	for id := range batch {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		c.api.Increment(id, batch[id])
	}
	c.metrics.AddEventsFlushed(len(ids))
	c.log.Debug("event increments flushed", "events", len(ids))
}

// LoadAll flushes buffered increments and loads every event.
func (c *EventController) LoadAll(ctx context.Context) (events []domain.Event, err error) {
	defer c.track("load_all")(&err)

	if err := c.begin(ctx); err != nil {
		return nil, err
	}
	c.flushBuffered()

	comp := c.loadAll.Replace()
	c.api.LoadAll()
	return await(ctx, &c.base, comp, c.timeout)
}

// Load flushes buffered increments and loads one event.
func (c *EventController) Load(ctx context.Context, id string) (event *domain.Event, err error) {
	defer c.track("load")(&err)

	if id == "" {
		return nil, domain.ErrMissingArgument.WithDetails("event id is required")
	}
	if err := c.begin(ctx); err != nil {
		return nil, err
	}
	c.flushBuffered()

	comp := c.load.Replace(id)
	c.api.Load(id)
	return await(ctx, &c.base, comp, c.timeout)
}

// OnError registers fn for every error the bridge reports.
func (c *EventController) OnError(fn func(*domain.Error)) {
	c.onError.Add(fn)
}

// Close flushes buffered increments and cancels every pending load.
func (c *EventController) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.flushBuffered()
	c.loadAll.Reject(domain.ErrCanceled)
	c.load.RejectAll(domain.ErrCanceled)
	return nil
}

type eventCallbacks struct {
	c *EventController
}

func (p *eventCallbacks) OnEventsLoaded(doc string) {
	p.c.post("events_loaded", func() {
		events, err := bridge.DecodeEvents(doc)
		if err != nil {
			p.c.log.Error("undecodable event list", "error", err)
			p.c.loadAll.Reject(err)
			return
		}
		p.c.loadAll.Resolve(events)
	})
}

func (p *eventCallbacks) OnEventLoaded(doc string) {
	p.c.post("event_loaded", func() {
		event, err := bridge.DecodeEvent(doc)
		if err != nil {
			p.c.log.Error("undecodable event", "error", err)
			p.c.load.RejectAll(err)
			return
		}
		p.c.load.Resolve(event.ID, event)
	})
}

// OnEventsError carries no event id, so it fails every pending load.
func (p *eventCallbacks) OnEventsError(code int, message string) {
	p.c.post("events_error", func() {
		e := p.c.vendorError(code, message, "")
		p.c.onError.Each(func(fn func(*domain.Error)) { fn(e) })
		p.c.loadAll.Reject(e)
		p.c.load.RejectAll(e)
	})
}
