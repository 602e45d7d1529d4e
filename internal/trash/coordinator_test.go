package trash

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faro-app/faro/pkg/model"
)

func newTestCoordinator(t *testing.T) (*Coordinator, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewCoordinator(sqlx.NewDb(db, "postgres")), mock
}

func trashRows(items ...model.TrashItem) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "user_id", "item_type", "item_id", "item_data", "deleted_at", "expires_at"})
	for _, it := range items {
		rows.AddRow(it.ID, it.UserID, string(it.ItemType), it.ItemID, []byte(it.ItemData), it.DeletedAt, it.ExpiresAt)
	}
	return rows
}

func TestMoveToTrash(t *testing.T) {
	t.Run("snapshots, records and soft-deletes in one transaction", func(t *testing.T) {
		coord, mock := newTestCoordinator(t)
		now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
		coord.now = func() time.Time { return now }

		task := model.Task{ID: "t1", UserID: "u1", Title: "old task", Status: model.StatusTodo}
		snapshot, err := json.Marshal(task)
		require.NoError(t, err)

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO trash_items \(id, user_id, item_type, item_id, item_data, deleted_at, expires_at\) VALUES .+ RETURNING .+`).
			WillReturnRows(trashRows(model.TrashItem{
				ID: "tr1", UserID: "u1", ItemType: model.ItemTypeTask, ItemID: "t1",
				ItemData: snapshot, DeletedAt: now, ExpiresAt: now.Add(model.RetentionPeriod),
			}))
		mock.ExpectExec(`UPDATE tasks SET deleted_at = now\(\) WHERE id = \$1 AND deleted_at IS NULL`).
			WithArgs("t1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		item, err := coord.MoveToTrash(context.Background(), "u1", model.ItemTypeTask, "t1", task)
		require.NoError(t, err)
		assert.Equal(t, "tr1", item.ID)
		assert.Equal(t, now.Add(model.RetentionPeriod), item.ExpiresAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failed soft-delete rolls back the trash row", func(t *testing.T) {
		coord, mock := newTestCoordinator(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO trash_items .+ RETURNING .+`).
			WillReturnRows(trashRows(model.TrashItem{ID: "tr1", UserID: "u1", ItemType: model.ItemTypeTask, ItemID: "t1", ItemData: []byte("{}")}))
		mock.ExpectExec(`UPDATE tasks SET deleted_at = now\(\)`).
			WithArgs("ghost").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		_, err := coord.MoveToTrash(context.Background(), "u1", model.ItemTypeTask, "ghost", struct{}{})
		require.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unsupported item type", func(t *testing.T) {
		coord, _ := newTestCoordinator(t)
		_, err := coord.MoveToTrash(context.Background(), "u1", model.ItemType("note"), "n1", struct{}{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported item type")
	})
}

func TestRestore(t *testing.T) {
	coord, mock := newTestCoordinator(t)
	item := &model.TrashItem{ID: "tr1", UserID: "u1", ItemType: model.ItemTypeGoal, ItemID: "g1"}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE goals SET deleted_at = \$1 WHERE id = \$2 AND deleted_at IS NOT NULL`).
		WithArgs(nil, "g1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM trash_items WHERE id = \$1`).
		WithArgs("tr1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, coord.Restore(context.Background(), item))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPermanentDelete(t *testing.T) {
	t.Run("removes original and trash row", func(t *testing.T) {
		coord, mock := newTestCoordinator(t)
		item := &model.TrashItem{ID: "tr1", UserID: "u1", ItemType: model.ItemTypeProject, ItemID: "p1"}

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM projects WHERE id = \$1`).
			WithArgs("p1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM trash_items WHERE id = \$1`).
			WithArgs("tr1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, coord.PermanentDelete(context.Background(), item))
	})

	t.Run("tolerates an original that is already gone", func(t *testing.T) {
		coord, mock := newTestCoordinator(t)
		item := &model.TrashItem{ID: "tr1", UserID: "u1", ItemType: model.ItemTypeTask, ItemID: "t1"}

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1`).
			WithArgs("t1").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM trash_items WHERE id = \$1`).
			WithArgs("tr1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, coord.PermanentDelete(context.Background(), item))
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEmptyTrash(t *testing.T) {
	t.Run("purges every item and sweeps the remainder", func(t *testing.T) {
		coord, mock := newTestCoordinator(t)
		now := time.Now()

		mock.ExpectQuery(`SELECT .+ FROM trash_items WHERE user_id = \$1 ORDER BY deleted_at DESC`).
			WithArgs("u1").
			WillReturnRows(trashRows(
				model.TrashItem{ID: "tr1", UserID: "u1", ItemType: model.ItemTypeTask, ItemID: "t1", ItemData: []byte("{}"), DeletedAt: now, ExpiresAt: now},
			))

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1`).
			WithArgs("t1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM trash_items WHERE id = \$1`).
			WithArgs("tr1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		mock.ExpectExec(`DELETE FROM trash_items WHERE user_id = \$1`).
			WithArgs("u1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, coord.EmptyTrash(context.Background(), "u1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("collects failures but keeps purging", func(t *testing.T) {
		coord, mock := newTestCoordinator(t)
		now := time.Now()

		mock.ExpectQuery(`SELECT .+ FROM trash_items WHERE user_id = \$1 ORDER BY deleted_at DESC`).
			WithArgs("u1").
			WillReturnRows(trashRows(
				model.TrashItem{ID: "tr1", UserID: "u1", ItemType: model.ItemTypeTask, ItemID: "t1", ItemData: []byte("{}"), DeletedAt: now, ExpiresAt: now},
				model.TrashItem{ID: "tr2", UserID: "u1", ItemType: model.ItemTypeGoal, ItemID: "g1", ItemData: []byte("{}"), DeletedAt: now, ExpiresAt: now},
			))

		// First purge fails inside its transaction.
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM tasks WHERE id = \$1`).
			WithArgs("t1").
			WillReturnError(assert.AnError)
		mock.ExpectRollback()

		// Second purge still runs.
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM goals WHERE id = \$1`).
			WithArgs("g1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM trash_items WHERE id = \$1`).
			WithArgs("tr2").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		mock.ExpectExec(`DELETE FROM trash_items WHERE user_id = \$1`).
			WithArgs("u1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := coord.EmptyTrash(context.Background(), "u1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "purge task t1")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTrashItemIsExpired(t *testing.T) {
	now := time.Now()
	item := model.TrashItem{ExpiresAt: now.Add(time.Hour)}
	assert.False(t, item.IsExpired(now))
	assert.True(t, item.IsExpired(now.Add(2*time.Hour)))
}
