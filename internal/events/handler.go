// internal/events/handler.go
package events

import (
	"context"
)

// Handler consumes workflow events. Handlers run on the bus goroutine, so a
// slow handler delays every later event.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Subscription detaches a handler from the bus.
type Subscription interface {
	Unsubscribe()
}

type subscription struct {
	id  string
	bus *Bus
	typ EventType
}

func (s *subscription) Unsubscribe() {
	s.bus.unsubscribe(s.id, s.typ)
}
