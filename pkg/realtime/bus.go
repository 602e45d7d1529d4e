package realtime

import (
	"context"
	"sync"
)

// Subscription is one live listener. Close is idempotent and must be called
// when the owning view goes away; a closed subscription's channel is closed.
type Subscription interface {
	Events() <-chan Event
	Close()
}

// Bus delivers change events to scoped subscribers.
type Bus interface {
	Subscribe(ctx context.Context, scope Scope) (Subscription, error)
}

// Publisher is implemented by buses that accept local publishes. The
// Postgres bus does not: its events originate from database triggers.
type Publisher interface {
	Publish(e Event)
}

// MemoryBus is an in-process Bus for tests and embedded use.
type MemoryBus struct {
	mu   sync.RWMutex
	subs map[*memorySub]struct{}
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[*memorySub]struct{})}
}

type memorySub struct {
	bus   *MemoryBus
	scope Scope
	ch    chan Event
	once  sync.Once
}

func (s *memorySub) Events() <-chan Event { return s.ch }

func (s *memorySub) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s)
		s.bus.mu.Unlock()
		close(s.ch)
	})
}

func (b *MemoryBus) Subscribe(ctx context.Context, scope Scope) (Subscription, error) {
	sub := &memorySub{bus: b, scope: scope, ch: make(chan Event, 16)}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	if ctx != nil && ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			sub.Close()
		}()
	}
	return sub, nil
}

// Publish fans the event out to every matching subscriber. A subscriber that
// cannot keep up has the event dropped rather than blocking the publisher.
func (b *MemoryBus) Publish(e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subs {
		if !sub.scope.Matches(e) {
			continue
		}
		select {
		case sub.ch <- e:
		default: // drop if slow
		}
	}
}

var (
	_ Bus       = (*MemoryBus)(nil)
	_ Publisher = (*MemoryBus)(nil)
)
