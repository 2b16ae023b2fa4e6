// internal/events/bus.go
package events

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// AllEvents subscribes a handler to every event type.
const AllEvents EventType = "*"

var (
	ErrBusClosed = errors.New("event bus is shut down")
	ErrBusFull   = errors.New("event buffer full")
)

// Publisher is the write side of the bus.
type Publisher interface {
	Publish(event Event) error
}

type registration struct {
	id      string
	handler Handler
}

// Bus fans workflow events out to subscribers. A single delivery goroutine
// keeps the step events of a workflow in publish order; handlers must not
// block for long.
type Bus struct {
	mu      sync.RWMutex
	subs    map[EventType][]registration
	logger  *zap.Logger
	queue   chan Event
	closing chan struct{}
	done    chan struct{}
	once    sync.Once
	dropped atomic.Uint64
}

// NewBus starts a bus that buffers up to bufferSize undelivered events.
func NewBus(logger *zap.Logger, bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	b := &Bus{
		subs:    make(map[EventType][]registration),
		logger:  logger.Named("event_bus"),
		queue:   make(chan Event, bufferSize),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go b.deliver()
	return b
}

// Subscribe registers a handler for eventType, or for every type with AllEvents.
// Handlers of one type run in subscription order.
func (b *Bus) Subscribe(eventType EventType, handler Handler) Subscription {
	id := uuid.NewString()

	b.mu.Lock()
	b.subs[eventType] = append(b.subs[eventType], registration{id: id, handler: handler})
	b.mu.Unlock()

	b.logger.Debug("Handler subscribed",
		zap.String("event_type", string(eventType)),
		zap.String("subscription_id", id))
	return &subscription{id: id, bus: b, typ: eventType}
}

func (b *Bus) SubscribeFunc(eventType EventType, fn func(context.Context, Event) error) Subscription {
	return b.Subscribe(eventType, HandlerFunc(fn))
}

// Publish queues an event without blocking the workflow. When the buffer is
// full the event is dropped and counted; workflows never wait on observers.
func (b *Bus) Publish(event Event) error {
	select {
	case <-b.closing:
		return ErrBusClosed
	default:
	}

	select {
	case b.queue <- event:
		return nil
	default:
		b.dropped.Add(1)
		b.logger.Warn("Event buffer full, dropping event",
			zap.String("event_type", string(event.Type())))
		return ErrBusFull
	}
}

// PublishSync runs every matching handler before returning. Handler errors
// are combined; one failing handler does not stop the rest.
func (b *Bus) PublishSync(ctx context.Context, event Event) error {
	var errs error
	for _, reg := range b.matching(event.Type()) {
		if err := reg.handler.Handle(ctx, event); err != nil {
			b.logger.Error("Handler error",
				zap.String("event_type", string(event.Type())),
				zap.String("subscription_id", reg.id),
				zap.Error(err))
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// Dropped reports how many events were discarded because the buffer was full.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

func (b *Bus) matching(typ EventType) []registration {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]registration, 0, len(b.subs[typ])+len(b.subs[AllEvents]))
	out = append(out, b.subs[typ]...)
	if typ != AllEvents {
		out = append(out, b.subs[AllEvents]...)
	}
	return out
}

func (b *Bus) deliver() {
	defer close(b.done)

	for {
		select {
		case event := <-b.queue:
			_ = b.PublishSync(context.Background(), event)
		case <-b.closing:
			// Flush what was accepted before shutdown.
			for {
				select {
				case event := <-b.queue:
					_ = b.PublishSync(context.Background(), event)
				default:
					return
				}
			}
		}
	}
}

func (b *Bus) unsubscribe(id string, eventType EventType) {
	b.mu.Lock()
	defer b.mu.Unlock()

	regs := b.subs[eventType]
	for i, reg := range regs {
		if reg.id != id {
			continue
		}
		regs = append(regs[:i:i], regs[i+1:]...)
		break
	}
	if len(regs) == 0 {
		delete(b.subs, eventType)
	} else {
		b.subs[eventType] = regs
	}
	b.logger.Debug("Handler unsubscribed",
		zap.String("event_type", string(eventType)),
		zap.String("subscription_id", id))
}

// Shutdown stops accepting events and waits until queued ones are delivered
// or ctx expires.
func (b *Bus) Shutdown(ctx context.Context) error {
	b.once.Do(func() { close(b.closing) })

	select {
	case <-b.done:
		if n := b.Dropped(); n > 0 {
			b.logger.Warn("Events dropped during run", zap.Uint64("dropped", n))
		}
		return nil
	case <-ctx.Done():
		b.logger.Warn("Event bus shutdown timed out", zap.Int("queued", len(b.queue)))
		return ctx.Err()
	}
}
