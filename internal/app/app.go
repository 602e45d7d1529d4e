// Package app wires the data layer together: one mirror store plus syncer
// per resource, the board, trash, gamification and billing services, all
// over a shared database connection, realtime bus and auth session.
//
// Every synchronized resource here is the same generic pair of types from
// pkg/mirror configured differently; no resource carries its own copy of
// the sync logic.
package app

import (
	"context"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/faro-app/faro/internal/billing"
	"github.com/faro-app/faro/internal/board"
	"github.com/faro-app/faro/internal/gamify"
	"github.com/faro-app/faro/internal/logger"
	"github.com/faro-app/faro/internal/tables"
	"github.com/faro-app/faro/internal/trash"
	"github.com/faro-app/faro/pkg/auth"
	"github.com/faro-app/faro/pkg/backend"
	"github.com/faro-app/faro/pkg/mirror"
	"github.com/faro-app/faro/pkg/model"
	"github.com/faro-app/faro/pkg/realtime"
)

type runner interface {
	Start(ctx context.Context) error
	Stop()
}

type mirrorStore interface {
	Reset()
	Refetch(ctx context.Context) error
}

// App owns the application-wide data layer.
type App struct {
	db      *sqlx.DB
	bus     realtime.Bus
	session *auth.Session
	log     *slog.Logger

	Tasks    *mirror.Syncer[model.Task]
	Projects *mirror.Syncer[model.Project]
	Goals    *mirror.Syncer[model.Goal]
	Trash    *mirror.Syncer[model.TrashItem]
	Stats    *mirror.Syncer[model.UserStats]

	Board   *board.Service
	TrashOp *trash.Coordinator
	Gamify  *gamify.Engine
	Billing *billing.Service

	syncers []runner
	stores  []mirrorStore
}

// New builds the data layer. Nothing is fetched or subscribed until Start.
func New(db *sqlx.DB, bus realtime.Bus, session *auth.Session) (*App, error) {
	a := &App{
		db:      db,
		bus:     bus,
		session: session,
		log:     logger.Mirror(),
		Board:   board.NewService(db),
		TrashOp: trash.NewCoordinator(db),
		Gamify:  gamify.NewEngine(db),
		Billing: billing.NewService(db),
	}

	var err error
	a.Tasks, err = newResourceSyncer[model.Task](a, tables.Tasks, "user_id",
		func(t *model.Task) string { return t.ID })
	if err != nil {
		return nil, err
	}
	a.Projects, err = newResourceSyncer[model.Project](a, tables.Projects, "owner_id",
		func(p *model.Project) string { return p.ID })
	if err != nil {
		return nil, err
	}
	a.Goals, err = newResourceSyncer[model.Goal](a, tables.Goals, "user_id",
		func(g *model.Goal) string { return g.ID })
	if err != nil {
		return nil, err
	}
	a.Trash, err = newResourceSyncer[model.TrashItem](a, tables.TrashItems, "user_id",
		func(t *model.TrashItem) string { return t.ID })
	if err != nil {
		return nil, err
	}
	a.Stats, err = newResourceSyncer[model.UserStats](a, tables.UserStats, "user_id",
		func(s *model.UserStats) string { return s.ID })
	if err != nil {
		return nil, err
	}

	session.OnChange(a.onAuthChange)
	return a, nil
}

// newResourceSyncer builds the store and syncer for one user-owned table.
// The fetch re-reads the session on every call, so a store can never load
// another user's rows after a fast sign-out/sign-in.
func newResourceSyncer[T any](a *App, table backend.Table, ownerColumn string, id func(*T) string) (*mirror.Syncer[T], error) {
	res := backend.NewResource[T](a.db, table)

	store, err := mirror.NewStore(mirror.Config[T]{
		Fetch: func(ctx context.Context) ([]T, error) {
			uid, ok := a.session.UserID()
			if !ok {
				return nil, nil
			}
			return res.List(ctx, backend.Column[string]{Name: ownerColumn}.Eq(uid))
		},
		ID:     id,
		Auth:   a.session,
		Logger: a.log,
	})
	if err != nil {
		return nil, err
	}

	// Scope by table only: the fetch already filters on the owner column,
	// and the user id is not known until sign-in.
	scope := realtime.Scope{Table: table.Name}
	syncer := mirror.NewSyncer(store, a.bus, scope, a.log)

	a.syncers = append(a.syncers, syncer)
	a.stores = append(a.stores, store)
	return syncer, nil
}

// Start subscribes and seeds every resource. On failure the already-started
// syncers are stopped again.
func (a *App) Start(ctx context.Context) error {
	started := make([]runner, 0, len(a.syncers))
	for _, s := range a.syncers {
		if err := s.Start(ctx); err != nil {
			for _, st := range started {
				st.Stop()
			}
			return err
		}
		started = append(started, s)
	}
	return nil
}

// Stop tears every subscription down. Stores keep their rows for a final
// paint but stop receiving updates.
func (a *App) Stop() {
	for _, s := range a.syncers {
		s.Stop()
	}
}

// onAuthChange resets every store on sign-out and refetches on sign-in.
func (a *App) onAuthChange(userID string) {
	for _, st := range a.stores {
		st.Reset()
	}
	if userID == "" {
		return
	}
	for _, st := range a.stores {
		if err := st.Refetch(context.Background()); err != nil {
			a.log.Error("refetch after sign-in", "err", err)
		}
	}
}

// ProjectView is the single-project detail view: the project's tasks and
// columns, each kept fresh by its own scoped subscription. Close releases
// both subscriptions.
type ProjectView struct {
	Tasks   *mirror.Syncer[model.Task]
	Columns *mirror.Syncer[model.BoardColumn]
}

// OpenProject builds and starts a project-scoped view. The task scope
// filters events on project_id, so changes to other projects never trigger
// a refetch here.
func (a *App) OpenProject(ctx context.Context, projectID string) (*ProjectView, error) {
	taskRes := backend.NewResource[model.Task](a.db, tables.Tasks)
	taskStore, err := mirror.NewStore(mirror.Config[model.Task]{
		Fetch: func(ctx context.Context) ([]model.Task, error) {
			return taskRes.List(ctx, backend.Column[string]{Name: "project_id"}.Eq(projectID))
		},
		ID:     func(t *model.Task) string { return t.ID },
		Auth:   a.session,
		Logger: a.log,
	})
	if err != nil {
		return nil, err
	}

	colRes := backend.NewResource[model.BoardColumn](a.db, tables.BoardColumns)
	colStore, err := mirror.NewStore(mirror.Config[model.BoardColumn]{
		Fetch: func(ctx context.Context) ([]model.BoardColumn, error) {
			return colRes.List(ctx, backend.Column[string]{Name: "project_id"}.Eq(projectID))
		},
		ID:     func(c *model.BoardColumn) string { return c.ID },
		Auth:   a.session,
		Logger: a.log,
	})
	if err != nil {
		return nil, err
	}

	view := &ProjectView{
		Tasks:   mirror.NewSyncer(taskStore, a.bus, realtime.Scope{Table: tables.Tasks.Name, ProjectID: projectID}, a.log),
		Columns: mirror.NewSyncer(colStore, a.bus, realtime.Scope{Table: tables.BoardColumns.Name, ProjectID: projectID}, a.log),
	}
	if err := view.Tasks.Start(ctx); err != nil {
		return nil, err
	}
	if err := view.Columns.Start(ctx); err != nil {
		view.Tasks.Stop()
		return nil, err
	}
	return view, nil
}

// Close tears down the view's subscriptions and stores.
func (v *ProjectView) Close() {
	v.Tasks.Stop()
	v.Columns.Stop()
	v.Tasks.Store().Close()
	v.Columns.Store().Close()
}
