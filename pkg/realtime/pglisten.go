package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/sethvargo/go-retry"
)

// ErrClosed is returned by Subscribe after the bus has been closed.
var ErrClosed = errors.New("realtime: bus closed")

// DefaultChannel is the NOTIFY channel the schema triggers publish on.
const DefaultChannel = "faro_changes"

// PGBus is a Bus fed by Postgres LISTEN/NOTIFY. The schema installs a
// trigger on every synchronized table that publishes a JSON event on each
// insert, update and delete, so one listener connection covers all tables.
type PGBus struct {
	listener *pq.Listener
	log      *slog.Logger

	mu     sync.RWMutex
	subs   map[*pgSub]struct{}
	closed bool

	done chan struct{}
}

// NewPGBus connects a listener to the given channel. The underlying
// pq.Listener reconnects on its own; the initial LISTEN is retried with
// exponential backoff so a briefly unavailable backend does not fail
// startup.
func NewPGBus(ctx context.Context, dsn, channel string, log *slog.Logger) (*PGBus, error) {
	if channel == "" {
		channel = DefaultChannel
	}
	if log == nil {
		log = slog.Default()
	}

	listener := pq.NewListener(dsn, time.Second, 30*time.Second, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Error("listener event", "event", int(ev), "err", err)
		}
	})

	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := listener.Listen(channel); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	b := &PGBus{
		listener: listener,
		log:      log,
		subs:     make(map[*pgSub]struct{}),
		done:     make(chan struct{}),
	}
	go b.dispatch()
	return b, nil
}

func (b *PGBus) dispatch() {
	for {
		select {
		case <-b.done:
			return
		case n := <-b.listener.Notify:
			if n == nil {
				// Connection was re-established; notifications may have
				// been missed while it was down.
				b.fanout(Event{Kind: KindResync})
				continue
			}
			var e Event
			if err := json.Unmarshal([]byte(n.Extra), &e); err != nil {
				b.log.Error("bad notification payload", "err", err)
				continue
			}
			b.fanout(e)
		}
	}
}

func (b *PGBus) fanout(e Event) {
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

type pgSub struct {
	bus   *PGBus
	scope Scope
	ch    chan Event
	once  sync.Once
}

func (s *pgSub) Events() <-chan Event { return s.ch }

func (s *pgSub) Close() {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s)
		s.bus.mu.Unlock()
		close(s.ch)
	})
}

func (b *PGBus) Subscribe(ctx context.Context, scope Scope) (Subscription, error) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrClosed
	}
	sub := &pgSub{bus: b, scope: scope, ch: make(chan Event, 16)}
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

// Close tears down the listener connection and every open subscription.
func (b *PGBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := make([]*pgSub, 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	b.mu.Unlock()

	close(b.done)
	for _, sub := range subs {
		sub.Close()
	}
	return b.listener.Close()
}

var _ Bus = (*PGBus)(nil)
