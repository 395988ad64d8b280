package simbridge

import (
	"context"

	"github.com/yndnr/gamesvc-go/internal/bridge"
	"github.com/yndnr/gamesvc-go/internal/core/domain"
)

type eventsAPI struct {
	p  *Platform
	cb holder[bridge.EventsCallback]
}

var _ bridge.Events = (*eventsAPI)(nil)

func (e *eventsAPI) SetCallback(cb bridge.EventsCallback) {
	e.cb.set(cb)
}

func (e *eventsAPI) fail(code int, msg string) {
	e.cb.with(func(cb bridge.EventsCallback) { cb.OnEventsError(code, msg) })
}

// Increment creates unknown events on first use. Success is silent.
func (e *eventsAPI) Increment(id string, steps int) {
	e.p.submit(OpIncrementEvent, func(ctx context.Context) {
		ev := domain.Event{ID: id, Name: id, Visible: true}
		if _, err := e.p.getJSON(ctx, keyEvents+id, &ev); err != nil {
			e.fail(domain.CodeInternalError, err.Error())
			return
		}
		ev.Value += int64(steps)
		if err := e.p.putJSON(ctx, keyEvents+id, ev); err != nil {
			e.fail(domain.CodeInternalError, err.Error())
		}
	}, e.fail)
}

func (e *eventsAPI) LoadAll() {
	e.p.submit(OpLoadEvents, func(ctx context.Context) {
		list, err := scanJSON[domain.Event](ctx, e.p.engine, keyEvents)
		if err != nil {
			e.fail(domain.CodeInternalError, err.Error())
			return
		}
		doc := bridge.EncodeEvents(list)
		e.cb.with(func(cb bridge.EventsCallback) { cb.OnEventsLoaded(doc) })
	}, e.fail)
}

func (e *eventsAPI) Load(id string) {
	e.p.submit(OpLoadEvent, func(ctx context.Context) {
		var ev domain.Event
		found, err := e.p.getJSON(ctx, keyEvents+id, &ev)
		if err != nil {
			e.fail(domain.CodeInternalError, err.Error())
			return
		}
		if !found {
			e.fail(domain.CodeNotFound, "Event not found: "+id)
			return
		}
		doc := bridge.EncodeEvent(&ev)
		e.cb.with(func(cb bridge.EventsCallback) { cb.OnEventLoaded(doc) })
	}, e.fail)
}
