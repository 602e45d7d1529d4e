package mirror

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faro-app/faro/pkg/realtime"
)

const (
	waitFor = 2 * time.Second
	tick    = 10 * time.Millisecond
)

func TestSyncerLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("start seeds the store synchronously", func(t *testing.T) {
		fetch := &fetchStub{}
		fetch.set(testRow{ID: "a"}, testRow{ID: "b"})
		store := newTestStore(t, fetch, nil)
		bus := realtime.NewMemoryBus()
		syncer := NewSyncer(store, bus, realtime.Scope{Table: "tasks"}, nil)

		require.NoError(t, syncer.Start(ctx))
		defer syncer.Stop()

		assert.Equal(t, StateActive, syncer.State())
		assert.Equal(t, 2, store.Len())
	})

	t.Run("double start fails", func(t *testing.T) {
		fetch := &fetchStub{}
		store := newTestStore(t, fetch, nil)
		syncer := NewSyncer(store, realtime.NewMemoryBus(), realtime.Scope{Table: "tasks"}, nil)

		require.NoError(t, syncer.Start(ctx))
		defer syncer.Stop()
		assert.ErrorIs(t, syncer.Start(ctx), ErrAlreadyStarted)
	})

	t.Run("stop is idempotent and keeps rows", func(t *testing.T) {
		fetch := &fetchStub{}
		fetch.set(testRow{ID: "a"})
		store := newTestStore(t, fetch, nil)
		syncer := NewSyncer(store, realtime.NewMemoryBus(), realtime.Scope{Table: "tasks"}, nil)

		require.NoError(t, syncer.Start(ctx))
		syncer.Stop()
		syncer.Stop()

		assert.Equal(t, StateUnsubscribed, syncer.State())
		assert.Equal(t, 1, store.Len())
	})

	t.Run("stop immediately after start", func(t *testing.T) {
		// The event loop starts on its own goroutine; a Stop racing its
		// first scheduling must still tear down cleanly.
		fetch := &fetchStub{}
		fetch.set(testRow{ID: "a"})
		store := newTestStore(t, fetch, nil)
		syncer := NewSyncer(store, realtime.NewMemoryBus(), realtime.Scope{Table: "tasks"}, nil)

		for i := 0; i < 20000; i++ {
			require.NoError(t, syncer.Start(ctx))
			syncer.Stop()
		}
		assert.Equal(t, StateUnsubscribed, syncer.State())
	})

	t.Run("restart after stop works", func(t *testing.T) {
		fetch := &fetchStub{}
		fetch.set(testRow{ID: "a"})
		store := newTestStore(t, fetch, nil)
		bus := realtime.NewMemoryBus()
		syncer := NewSyncer(store, bus, realtime.Scope{Table: "tasks"}, nil)

		require.NoError(t, syncer.Start(ctx))
		syncer.Stop()
		require.NoError(t, syncer.Start(ctx))
		defer syncer.Stop()
		assert.Equal(t, StateActive, syncer.State())
	})

	t.Run("initial refetch failure does not fail start", func(t *testing.T) {
		fetch := &fetchStub{err: errors.New("backend down")}
		store := newTestStore(t, fetch, nil)
		syncer := NewSyncer(store, realtime.NewMemoryBus(), realtime.Scope{Table: "tasks"}, nil)

		require.NoError(t, syncer.Start(ctx))
		defer syncer.Stop()
		assert.Equal(t, StateActive, syncer.State())
		assert.Error(t, store.Err())
	})
}

func TestSyncerRefetchOnEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("matching event triggers a refetch", func(t *testing.T) {
		fetch := &fetchStub{}
		fetch.set(testRow{ID: "a"})
		store := newTestStore(t, fetch, nil)
		bus := realtime.NewMemoryBus()
		syncer := NewSyncer(store, bus, realtime.Scope{Table: "tasks"}, nil)

		require.NoError(t, syncer.Start(ctx))
		defer syncer.Stop()
		require.Equal(t, 1, fetch.count())

		fetch.set(testRow{ID: "a"}, testRow{ID: "b"})
		bus.Publish(realtime.Event{Table: "tasks", Kind: realtime.KindInsert, ID: "b"})

		assert.Eventually(t, func() bool { return store.Len() == 2 }, waitFor, tick)
	})

	t.Run("non-matching event is ignored", func(t *testing.T) {
		fetch := &fetchStub{}
		fetch.set(testRow{ID: "a"})
		store := newTestStore(t, fetch, nil)
		bus := realtime.NewMemoryBus()
		syncer := NewSyncer(store, bus, realtime.Scope{Table: "tasks"}, nil)

		require.NoError(t, syncer.Start(ctx))
		defer syncer.Stop()

		bus.Publish(realtime.Event{Table: "goals", Kind: realtime.KindInsert, ID: "g1"})
		time.Sleep(50 * time.Millisecond)
		syncer.Wait()
		assert.Equal(t, 1, fetch.count())
	})

	t.Run("burst collapses but never drops the last change", func(t *testing.T) {
		gate := make(chan struct{})
		fetch := &fetchStub{gate: gate}
		fetch.set(testRow{ID: "a"})
		store := newTestStore(t, fetch, nil)
		bus := realtime.NewMemoryBus()
		syncer := NewSyncer(store, bus, realtime.Scope{Table: "tasks"}, nil)

		// Let the synchronous initial refetch through.
		go func() { gate <- struct{}{} }()
		require.NoError(t, syncer.Start(ctx))
		defer syncer.Stop()

		// First event starts a refetch that blocks on the gate; the rest
		// arrive while it is in flight and must collapse into one follow-up.
		bus.Publish(realtime.Event{Table: "tasks", Kind: realtime.KindUpdate, ID: "a"})
		assert.Eventually(t, func() bool { return fetch.count() == 2 }, waitFor, tick)
		bus.Publish(realtime.Event{Table: "tasks", Kind: realtime.KindUpdate, ID: "a"})
		bus.Publish(realtime.Event{Table: "tasks", Kind: realtime.KindUpdate, ID: "a"})
		bus.Publish(realtime.Event{Table: "tasks", Kind: realtime.KindUpdate, ID: "a"})
		time.Sleep(100 * time.Millisecond) // let the burst land while in flight

		fetch.set(testRow{ID: "a"}, testRow{ID: "b"})
		close(gate)

		syncer.Wait()
		assert.Equal(t, 3, fetch.count())
		assert.Equal(t, 2, store.Len())
	})

	t.Run("no refetch after stop", func(t *testing.T) {
		fetch := &fetchStub{}
		fetch.set(testRow{ID: "a"})
		store := newTestStore(t, fetch, nil)
		bus := realtime.NewMemoryBus()
		syncer := NewSyncer(store, bus, realtime.Scope{Table: "tasks"}, nil)

		require.NoError(t, syncer.Start(ctx))
		syncer.Stop()
		calls := fetch.count()

		bus.Publish(realtime.Event{Table: "tasks", Kind: realtime.KindInsert, ID: "b"})
		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, calls, fetch.count())
	})

	t.Run("resync event refetches regardless of scope detail", func(t *testing.T) {
		fetch := &fetchStub{}
		fetch.set(testRow{ID: "a"})
		store := newTestStore(t, fetch, nil)
		bus := realtime.NewMemoryBus()
		syncer := NewSyncer(store, bus, realtime.Scope{Table: "tasks", UserID: "u1"}, nil)

		require.NoError(t, syncer.Start(ctx))
		defer syncer.Stop()
		require.Equal(t, 1, fetch.count())

		bus.Publish(realtime.Event{Kind: realtime.KindResync})
		assert.Eventually(t, func() bool { return fetch.count() >= 2 }, waitFor, tick)
	})
}

func TestSyncerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fetch := &fetchStub{}
	fetch.set(testRow{ID: "a"})
	store := newTestStore(t, fetch, nil)
	bus := realtime.NewMemoryBus()
	syncer := NewSyncer(store, bus, realtime.Scope{Table: "tasks"}, nil)

	require.NoError(t, syncer.Start(ctx))
	cancel()

	bus.Publish(realtime.Event{Table: "tasks", Kind: realtime.KindInsert, ID: "b"})
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, fetch.count())
	syncer.Stop()
}
