package mirror

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/faro-app/faro/pkg/realtime"
)

// SyncState is the lifecycle state of a Syncer.
type SyncState int

const (
	StateUnsubscribed SyncState = iota
	StateSubscribing
	StateActive
)

func (s SyncState) String() string {
	switch s {
	case StateSubscribing:
		return "subscribing"
	case StateActive:
		return "active"
	default:
		return "unsubscribed"
	}
}

// ErrAlreadyStarted is returned by Start on a running Syncer.
var ErrAlreadyStarted = errors.New("mirror: syncer already started")

// Syncer owns the live subscription for one Store. Each matching change
// event triggers a refetch of the whole store. Refetches are serialized:
// an event that arrives while one is in flight marks the store dirty and
// exactly one follow-up refetch runs afterwards, so bursts collapse but no
// change is ever dropped.
//
// A Syncer belongs to whichever component owns the Store and follows that
// owner's lifecycle through Start and Stop. It is never shared.
type Syncer[T any] struct {
	store *Store[T]
	bus   realtime.Bus
	scope realtime.Scope
	log   *slog.Logger

	mu     sync.Mutex
	state  SyncState
	sub    realtime.Subscription
	cancel context.CancelFunc
	done   chan struct{}

	refetchMu sync.Mutex
	inflight  bool
	dirty     bool
	idle      chan struct{} // closed when no refetch is in flight
}

// NewSyncer wires a syncer for store, listening on bus within scope.
func NewSyncer[T any](store *Store[T], bus realtime.Bus, scope realtime.Scope, log *slog.Logger) *Syncer[T] {
	if log == nil {
		log = slog.Default()
	}
	idle := make(chan struct{})
	close(idle)
	return &Syncer[T]{store: store, bus: bus, scope: scope, log: log, idle: idle}
}

// Store returns the store this syncer keeps fresh.
func (s *Syncer[T]) Store() *Store[T] {
	return s.store
}

// State returns the current lifecycle state.
func (s *Syncer[T]) State() SyncState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Start subscribes and seeds the store with an initial refetch. The initial
// refetch runs synchronously so the store reflects server state when Start
// returns; its error is recorded on the store rather than failing Start,
// because the subscription is healthy and a later event retriggers the load.
func (s *Syncer[T]) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateUnsubscribed {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.state = StateSubscribing
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	sub, err := s.bus.Subscribe(runCtx, s.scope)
	if err != nil {
		cancel()
		s.mu.Lock()
		s.state = StateUnsubscribed
		s.cancel = nil
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	if s.state != StateSubscribing {
		// Stopped while the subscribe was in flight.
		s.mu.Unlock()
		sub.Close()
		return nil
	}
	done := make(chan struct{})
	s.sub = sub
	s.state = StateActive
	s.done = done
	s.mu.Unlock()

	if err := s.store.Refetch(runCtx); err != nil {
		s.log.Error("initial refetch", "table", s.scope.Table, "err", err)
	}

	// The loop closes the captured channel, not s.done: Stop may nil the
	// field before this goroutine runs.
	go func() {
		defer close(done)
		s.loop(runCtx, sub)
	}()
	return nil
}

func (s *Syncer[T]) loop(ctx context.Context, sub realtime.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			s.log.Debug("change event", "table", ev.Table, "kind", string(ev.Kind), "id", ev.ID)
			s.kickRefetch(ctx)
		}
	}
}

// kickRefetch starts a refetch unless one is already running, in which case
// it marks the store dirty so the running worker goes one more round.
func (s *Syncer[T]) kickRefetch(ctx context.Context) {
	s.refetchMu.Lock()
	if s.inflight {
		s.dirty = true
		s.refetchMu.Unlock()
		return
	}
	s.inflight = true
	s.idle = make(chan struct{})
	s.refetchMu.Unlock()

	go func() {
		for {
			if err := s.store.Refetch(ctx); err != nil {
				s.log.Error("refetch", "table", s.scope.Table, "err", err)
			}
			s.refetchMu.Lock()
			if s.dirty && ctx.Err() == nil {
				s.dirty = false
				s.refetchMu.Unlock()
				continue
			}
			s.inflight = false
			close(s.idle)
			s.refetchMu.Unlock()
			return
		}
	}()
}

// Wait blocks until no event-triggered refetch is in flight. Intended for
// tests and graceful shutdown.
func (s *Syncer[T]) Wait() {
	s.refetchMu.Lock()
	idle := s.idle
	s.refetchMu.Unlock()
	<-idle
}

// Stop unsubscribes and stops triggering refetches. It is idempotent and
// deterministic: when it returns, the listener is gone and no further
// refetch will start. The store itself stays usable and keeps its rows.
func (s *Syncer[T]) Stop() {
	s.mu.Lock()
	if s.state == StateUnsubscribed {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	sub := s.sub
	done := s.done
	s.state = StateUnsubscribed
	s.sub = nil
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if sub != nil {
		sub.Close()
	}
	if done != nil {
		<-done
	}
	s.Wait()
}
