// Package trash implements the soft-delete workflow: moving entities into a
// time-boxed trash with a point-in-time snapshot, restoring them, and
// purging them for good.
//
// Each workflow pairs a write on the owning table with a write on
// trash_items. Both run inside one database transaction, so the
// half-applied states a client-side two-step sequence could leave behind
// cannot occur here.
package trash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/multierr"

	"github.com/faro-app/faro/internal/logger"
	"github.com/faro-app/faro/internal/tables"
	"github.com/faro-app/faro/pkg/backend"
	"github.com/faro-app/faro/pkg/model"
)

// target adapts one typed resource to the untyped operations the
// coordinator needs, keyed by item type.
type target struct {
	softDelete func(ctx context.Context, ex backend.Executor, id string) error
	restore    func(ctx context.Context, ex backend.Executor, id string) error
	delete     func(ctx context.Context, ex backend.Executor, id string) error
}

func targetFor[T any](r *backend.Resource[T]) target {
	return target{
		softDelete: func(ctx context.Context, ex backend.Executor, id string) error {
			return r.WithExecutor(ex).SoftDelete(ctx, id)
		},
		restore: func(ctx context.Context, ex backend.Executor, id string) error {
			return r.WithExecutor(ex).RestoreDeleted(ctx, id)
		},
		delete: func(ctx context.Context, ex backend.Executor, id string) error {
			return r.WithExecutor(ex).Delete(ctx, id)
		},
	}
}

// Coordinator runs the trash workflows across tasks, projects and goals.
type Coordinator struct {
	db      *sqlx.DB
	trash   *backend.Resource[model.TrashItem]
	targets map[model.ItemType]target
	now     func() time.Time
	log     *slog.Logger
}

func NewCoordinator(db *sqlx.DB) *Coordinator {
	return &Coordinator{
		db:    db,
		trash: backend.NewResource[model.TrashItem](db, tables.TrashItems),
		targets: map[model.ItemType]target{
			model.ItemTypeTask:    targetFor(backend.NewResource[model.Task](db, tables.Tasks)),
			model.ItemTypeProject: targetFor(backend.NewResource[model.Project](db, tables.Projects)),
			model.ItemTypeGoal:    targetFor(backend.NewResource[model.Goal](db, tables.Goals)),
		},
		now: time.Now,
		log: logger.Trash(),
	}
}

func (c *Coordinator) targetFor(itemType model.ItemType) (target, error) {
	t, ok := c.targets[itemType]
	if !ok {
		return target{}, fmt.Errorf("trash: unsupported item type %q", itemType)
	}
	return t, nil
}

// MoveToTrash snapshots the entity, records a trash item and soft-deletes
// the original, all in one transaction. The snapshot is what the trash view
// renders; the soft-deleted original stays put for restore.
func (c *Coordinator) MoveToTrash(ctx context.Context, userID string, itemType model.ItemType, itemID string, snapshot interface{}) (*model.TrashItem, error) {
	tgt, err := c.targetFor(itemType)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("trash: snapshot %s %s: %w", itemType, itemID, err)
	}

	now := c.now().UTC()
	item := &model.TrashItem{
		ID:        uuid.NewString(),
		UserID:    userID,
		ItemType:  itemType,
		ItemID:    itemID,
		ItemData:  data,
		DeletedAt: now,
		ExpiresAt: now.Add(model.RetentionPeriod),
	}

	var stored *model.TrashItem
	err = backend.WithTransaction(ctx, c.db, func(tx *sqlx.Tx) error {
		var err error
		stored, err = c.trash.WithExecutor(tx).Insert(ctx, item)
		if err != nil {
			return err
		}
		return tgt.softDelete(ctx, tx, itemID)
	})
	if err != nil {
		return nil, err
	}
	c.log.Info("moved to trash", "type", string(itemType), "item_id", itemID)
	return stored, nil
}

// Restore clears the original's soft-delete marker and removes the trash
// item, in one transaction. The entity comes back exactly as it was.
func (c *Coordinator) Restore(ctx context.Context, item *model.TrashItem) error {
	tgt, err := c.targetFor(item.ItemType)
	if err != nil {
		return err
	}
	err = backend.WithTransaction(ctx, c.db, func(tx *sqlx.Tx) error {
		if err := tgt.restore(ctx, tx, item.ItemID); err != nil {
			return err
		}
		return c.trash.WithExecutor(tx).Delete(ctx, item.ID)
	})
	if err != nil {
		return err
	}
	c.log.Info("restored from trash", "type", string(item.ItemType), "item_id", item.ItemID)
	return nil
}

// PermanentDelete removes both the original row and the trash item. There
// is no way back from this one.
func (c *Coordinator) PermanentDelete(ctx context.Context, item *model.TrashItem) error {
	tgt, err := c.targetFor(item.ItemType)
	if err != nil {
		return err
	}
	err = backend.WithTransaction(ctx, c.db, func(tx *sqlx.Tx) error {
		// An original that is already gone should not keep its trash row
		// around forever.
		if err := tgt.delete(ctx, tx, item.ItemID); err != nil && !errors.Is(err, backend.ErrNotFound) {
			return err
		}
		return c.trash.WithExecutor(tx).Delete(ctx, item.ID)
	})
	if err != nil {
		return err
	}
	c.log.Info("permanently deleted", "type", string(item.ItemType), "item_id", item.ItemID)
	return nil
}

// List returns the user's trash items, newest first.
func (c *Coordinator) List(ctx context.Context, userID string) ([]model.TrashItem, error) {
	return c.trash.List(ctx, backend.Column[string]{Name: "user_id"}.Eq(userID))
}

// EmptyTrash purges every trash item of the user. Items are purged one by
// one; failures are collected and reported together while the remaining
// items still get their chance. Any orphaned trash rows left over (for
// example from an unsupported item type) are swept at the end.
func (c *Coordinator) EmptyTrash(ctx context.Context, userID string) error {
	items, err := c.List(ctx, userID)
	if err != nil {
		return err
	}

	var errs error
	for i := range items {
		if err := c.PermanentDelete(ctx, &items[i]); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("purge %s %s: %w", items[i].ItemType, items[i].ItemID, err))
		}
	}

	if _, err := c.trash.DeleteWhere(ctx, backend.Column[string]{Name: "user_id"}.Eq(userID)); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("sweep remaining: %w", err))
	}
	return errs
}
