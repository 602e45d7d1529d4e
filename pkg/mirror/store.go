// Package mirror keeps in-memory copies of backend tables in sync. One
// Store holds the rows of one resource for the current user; one Syncer
// owns the live subscription that keeps a Store fresh. Every synchronized
// resource in the application is an instance of these two types with
// different configuration.
package mirror

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/faro-app/faro/pkg/auth"
)

// Config wires one Store.
type Config[T any] struct {
	// Fetch loads the full current row set from the backend. Required.
	Fetch func(ctx context.Context) ([]T, error)
	// ID extracts the entity id from a row. Required.
	ID func(row *T) string
	// Auth gates fetching: with no signed-in user the store stays empty and
	// Refetch is a silent no-op. Optional; nil means always authenticated.
	Auth auth.Provider
	// Logger for refetch diagnostics. Optional.
	Logger *slog.Logger
}

// Store mirrors one backend table. Refetch replaces the contents wholesale
// with the server's current truth; the Apply helpers update it eagerly from
// a mutation's own response so the caller never waits on the subscription
// round-trip. Optimistic entries may be transiently overwritten by a later
// Refetch, which always wins.
//
// A Store is safe for concurrent use.
type Store[T any] struct {
	fetch func(ctx context.Context) ([]T, error)
	id    func(*T) string
	auth  auth.Provider
	log   *slog.Logger

	mu      sync.RWMutex
	rows    map[string]T
	order   []string
	loading bool
	lastErr error
	closed  bool
	gen     uint64
}

// NewStore builds an empty store from cfg.
func NewStore[T any](cfg Config[T]) (*Store[T], error) {
	if cfg.Fetch == nil {
		return nil, errors.New("mirror: Fetch is required")
	}
	if cfg.ID == nil {
		return nil, errors.New("mirror: ID is required")
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Store[T]{
		fetch: cfg.Fetch,
		id:    cfg.ID,
		auth:  cfg.Auth,
		log:   log,
		rows:  make(map[string]T),
	}, nil
}

// Refetch reloads the full row set and atomically replaces the store's
// contents. Concurrent refetches are allowed; whichever resolves last wins,
// which is fine because each one is a complete snapshot of server state.
// Results that land after Close or Reset are discarded.
func (s *Store[T]) Refetch(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	if s.auth != nil {
		if _, ok := s.auth.UserID(); !ok {
			// Invalidate any fetch still in flight from before sign-out so
			// its result cannot repopulate the emptied store.
			s.gen++
			s.rows = make(map[string]T)
			s.order = nil
			s.lastErr = nil
			s.mu.Unlock()
			return nil
		}
	}
	s.loading = true
	gen := s.gen
	s.mu.Unlock()

	rows, err := s.fetch(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen != s.gen {
		// The owner went away or reset while we were in flight.
		return nil
	}
	s.loading = false
	if err != nil {
		s.lastErr = err
		return err
	}
	s.lastErr = nil
	s.rows = make(map[string]T, len(rows))
	s.order = make([]string, 0, len(rows))
	for i := range rows {
		id := s.id(&rows[i])
		if _, dup := s.rows[id]; !dup {
			s.order = append(s.order, id)
		}
		s.rows[id] = rows[i]
	}
	return nil
}

// ApplyInsert adds or replaces a row from a mutation's own response.
func (s *Store[T]) ApplyInsert(row T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	id := s.id(&row)
	if _, ok := s.rows[id]; !ok {
		s.order = append(s.order, id)
	}
	s.rows[id] = row
}

// ApplyUpdate replaces an existing row in place. Unknown ids are ignored;
// the next refetch brings them in if they are real.
func (s *Store[T]) ApplyUpdate(id string, row T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if _, ok := s.rows[id]; ok {
		s.rows[id] = row
	}
}

// ApplyRemove drops a row by id.
func (s *Store[T]) ApplyRemove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if _, ok := s.rows[id]; !ok {
		return
	}
	delete(s.rows, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Seed populates an empty store, typically from a disk cache, without
// touching the loading or error state. A non-empty store is left alone.
func (s *Store[T]) Seed(rows []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || len(s.rows) > 0 {
		return
	}
	for i := range rows {
		id := s.id(&rows[i])
		if _, dup := s.rows[id]; !dup {
			s.order = append(s.order, id)
		}
		s.rows[id] = rows[i]
	}
}

// Rows returns the rows in fetch order.
func (s *Store[T]) Rows() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.rows[id])
	}
	return out
}

// Get returns one row by id.
func (s *Store[T]) Get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.rows[id]
	return row, ok
}

// Len returns the number of mirrored rows.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// Loading reports whether a refetch is in flight.
func (s *Store[T]) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the error from the most recent failed refetch, cleared by the
// next successful one.
func (s *Store[T]) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Reset empties the store and invalidates in-flight refetches. Used when
// the user signs out.
func (s *Store[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.gen++
	s.rows = make(map[string]T)
	s.order = nil
	s.loading = false
	s.lastErr = nil
}

// Close permanently shuts the store. Later refetch results and apply calls
// are discarded rather than mutating state nobody owns.
func (s *Store[T]) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.gen++
}
