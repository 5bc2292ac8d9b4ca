package eventbus

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"peora/internal/domain"
)

// queueSize bounds how far a slow subscriber can lag before Publish blocks.
const queueSize = 64

type delivery struct {
	ctx   context.Context
	event domain.Event
}

type subscription struct {
	id      uint64
	handler domain.EventHandler
	queue   chan delivery
	stop    chan struct{}
	once    sync.Once
}

func (s *subscription) close() {
	s.once.Do(func() { close(s.stop) })
}

// Bus is an in-process event bus. Every subscription owns a worker goroutine,
// so a subscriber sees events in the order they were published.
type Bus struct {
	mu      sync.RWMutex
	typed   map[domain.EventType][]*subscription
	allSubs []*subscription
	nextID  atomic.Uint64
	logger  *slog.Logger
	wg      sync.WaitGroup
	closed  atomic.Bool
}

// New creates an event bus.
func New(logger *slog.Logger) *Bus {
	return &Bus{
		typed:  make(map[domain.EventType][]*subscription),
		logger: logger,
	}
}

// Publish queues the event for every matching subscriber. It blocks only
// while a subscriber's queue is full, and gives up when ctx is done.
func (b *Bus) Publish(ctx context.Context, event domain.Event) {
	if b.closed.Load() {
		return
	}

	b.mu.RLock()
	targets := make([]*subscription, 0, len(b.typed[event.Type])+len(b.allSubs))
	targets = append(targets, b.typed[event.Type]...)
	targets = append(targets, b.allSubs...)
	b.mu.RUnlock()

	d := delivery{ctx: ctx, event: event}
	for _, sub := range targets {
		select {
		case sub.queue <- d:
		case <-sub.stop:
		case <-ctx.Done():
			b.logger.Warn("event dropped", "event", string(event.Type), "error", ctx.Err())
			return
		}
	}
}

// Subscribe registers a handler for a specific event type.
// Returns an unsubscribe function.
func (b *Bus) Subscribe(eventType domain.EventType, handler domain.EventHandler) func() {
	sub := b.start(handler)

	b.mu.Lock()
	b.typed[eventType] = append(b.typed[eventType], sub)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		b.typed[eventType] = remove(b.typed[eventType], sub.id)
		b.mu.Unlock()
		sub.close()
	}
}

// SubscribeAll registers a handler that receives every event.
// Returns an unsubscribe function.
func (b *Bus) SubscribeAll(handler domain.EventHandler) func() {
	sub := b.start(handler)

	b.mu.Lock()
	b.allSubs = append(b.allSubs, sub)
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		b.allSubs = remove(b.allSubs, sub.id)
		b.mu.Unlock()
		sub.close()
	}
}

// Close stops accepting events, lets every subscriber finish its queued
// events, and waits for the workers to exit. It is idempotent.
func (b *Bus) Close() {
	if b.closed.Swap(true) {
		return
	}

	b.mu.RLock()
	for _, subs := range b.typed {
		for _, s := range subs {
			s.close()
		}
	}
	for _, s := range b.allSubs {
		s.close()
	}
	b.mu.RUnlock()

	b.wg.Wait()
}

func (b *Bus) start(handler domain.EventHandler) *subscription {
	sub := &subscription{
		id:      b.nextID.Add(1),
		handler: handler,
		queue:   make(chan delivery, queueSize),
		stop:    make(chan struct{}),
	}
	if b.closed.Load() {
		sub.close()
	}
	b.wg.Add(1)
	go b.run(sub)
	return sub
}

func (b *Bus) run(sub *subscription) {
	defer b.wg.Done()
	for {
		select {
		case d := <-sub.queue:
			b.handle(sub, d)
		case <-sub.stop:
			for {
				select {
				case d := <-sub.queue:
					b.handle(sub, d)
				default:
					return
				}
			}
		}
	}
}

func (b *Bus) handle(sub *subscription, d delivery) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				"event", string(d.event.Type),
				"panic", r,
			)
		}
	}()
	sub.handler(d.ctx, d.event)
}

func remove(subs []*subscription, id uint64) []*subscription {
	for i, s := range subs {
		if s.id == id {
			return append(subs[:i:i], subs[i+1:]...)
		}
	}
	return subs
}
