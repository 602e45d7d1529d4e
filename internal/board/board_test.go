package board

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faro-app/faro/pkg/model"
)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(sqlx.NewDb(db, "postgres")), mock
}

func columnRows(cols ...model.BoardColumn) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{"id", "project_id", "status", "title", "color", "position", "created_at"})
	for _, c := range cols {
		rows.AddRow(c.ID, c.ProjectID, string(c.Status), c.Title, c.Color, c.Position, c.CreatedAt)
	}
	return rows
}

func taskRows(tasks ...model.Task) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "title", "description", "status", "priority",
		"start_date", "due_date", "is_indefinite", "project_id",
		"responsible_id", "tags", "goal_ids", "deleted_at", "created_at",
		"updated_at",
	})
	for _, task := range tasks {
		rows.AddRow(task.ID, task.UserID, task.Title, task.Description, string(task.Status),
			string(task.Priority), task.StartDate, task.DueDate, task.IsIndefinite,
			task.ProjectID, task.ResponsibleID, "{}", "{}", task.DeletedAt,
			task.CreatedAt, task.UpdatedAt)
	}
	return rows
}

func TestCreateProject(t *testing.T) {
	svc, mock := newTestService(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO projects \(id, owner_id, name, description, start_date, end_date, is_indefinite\) VALUES .+ RETURNING .+`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "owner_id", "name", "description", "start_date", "end_date",
			"is_indefinite", "deleted_at", "created_at", "updated_at",
		}).AddRow("p1", "u1", "Launch", nil, nil, nil, false, nil, now, now))
	mock.ExpectQuery(`INSERT INTO project_members \(id, project_id, user_id, role\) VALUES .+ RETURNING .+`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "project_id", "user_id", "role", "created_at"}).
			AddRow("m1", "p1", "u1", "admin", now))
	for i, col := range []struct {
		status, title string
	}{
		{"todo", "Novo"},
		{"in_progress", "Em Andamento"},
		{"done", "Concluído"},
	} {
		mock.ExpectQuery(`INSERT INTO board_columns \(id, project_id, status, title, color, position\) VALUES .+ RETURNING .+`).
			WillReturnRows(columnRows(model.BoardColumn{
				ID: "c1", ProjectID: "p1", Status: model.Status(col.status),
				Title: col.title, Position: (i + 1) * posGap, CreatedAt: now,
			}))
	}
	mock.ExpectCommit()

	created, err := svc.CreateProject(context.Background(), &model.Project{OwnerID: "u1", Name: "Launch"})
	require.NoError(t, err)
	assert.Equal(t, "p1", created.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateProjectRollsBackOnFailure(t *testing.T) {
	svc, mock := newTestService(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO projects .+ RETURNING .+`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "owner_id", "name", "description", "start_date", "end_date",
			"is_indefinite", "deleted_at", "created_at", "updated_at",
		}).AddRow("p1", "u1", "Launch", nil, nil, nil, false, nil, now, now))
	mock.ExpectQuery(`INSERT INTO project_members .+ RETURNING .+`).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := svc.CreateProject(context.Background(), &model.Project{OwnerID: "u1", Name: "Launch"})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAddColumn(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`SELECT COALESCE\(MAX\(position\), 0\) \+ \$1 FROM board_columns WHERE project_id = \$2`).
		WithArgs(posGap, "p1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(4 * posGap))
	mock.ExpectQuery(`INSERT INTO board_columns .+ RETURNING .+`).
		WillReturnRows(columnRows(model.BoardColumn{
			ID: "c4", ProjectID: "p1", Status: "review", Title: "Revisão", Position: 4 * posGap,
		}))

	col, err := svc.AddColumn(context.Background(), "p1", "review", "Revisão", "#a855f7")
	require.NoError(t, err)
	assert.Equal(t, 4*posGap, col.Position)
}

func TestRenameColumnKeepsStatus(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`UPDATE board_columns SET title = \$1 WHERE id = \$2 RETURNING .+`).
		WithArgs("Backlog", "c1").
		WillReturnRows(columnRows(model.BoardColumn{ID: "c1", ProjectID: "p1", Status: model.StatusTodo, Title: "Backlog"}))

	col, err := svc.RenameColumn(context.Background(), "c1", "Backlog")
	require.NoError(t, err)
	assert.Equal(t, model.StatusTodo, col.Status)
	assert.Equal(t, "Backlog", col.Title)
}

func TestDeleteColumn(t *testing.T) {
	t.Run("refuses a column that still holds tasks", func(t *testing.T) {
		svc, mock := newTestService(t)

		mock.ExpectQuery(`SELECT .+ FROM board_columns WHERE id = \$1`).
			WithArgs("c1").
			WillReturnRows(columnRows(model.BoardColumn{ID: "c1", ProjectID: "p1", Status: model.StatusTodo, Title: "Novo"}))
		mock.ExpectQuery(`SELECT .+ FROM tasks WHERE deleted_at IS NULL AND project_id = \$1 AND status = \$2 ORDER BY created_at DESC`).
			WithArgs("p1", "todo").
			WillReturnRows(taskRows(model.Task{ID: "t1", UserID: "u1", Status: model.StatusTodo}))

		err := svc.DeleteColumn(context.Background(), "c1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "still holds")
	})

	t.Run("deletes an empty column", func(t *testing.T) {
		svc, mock := newTestService(t)

		mock.ExpectQuery(`SELECT .+ FROM board_columns WHERE id = \$1`).
			WithArgs("c1").
			WillReturnRows(columnRows(model.BoardColumn{ID: "c1", ProjectID: "p1", Status: model.StatusTodo}))
		mock.ExpectQuery(`SELECT .+ FROM tasks WHERE deleted_at IS NULL AND project_id = \$1 AND status = \$2 ORDER BY created_at DESC`).
			WithArgs("p1", "todo").
			WillReturnRows(taskRows())
		mock.ExpectExec(`DELETE FROM board_columns WHERE id = \$1`).
			WithArgs("c1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, svc.DeleteColumn(context.Background(), "c1"))
	})
}

func TestMoveTask(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(`SELECT .+ FROM board_columns WHERE id = \$1`).
		WithArgs("c2").
		WillReturnRows(columnRows(model.BoardColumn{ID: "c2", ProjectID: "p1", Status: model.StatusInProgress, Title: "Em Andamento"}))
	mock.ExpectQuery(`UPDATE tasks SET status = \$1 WHERE id = \$2 AND deleted_at IS NULL RETURNING .+`).
		WithArgs("in_progress", "t1").
		WillReturnRows(taskRows(model.Task{ID: "t1", UserID: "u1", Status: model.StatusInProgress}))

	task, err := svc.MoveTask(context.Background(), "t1", "c2")
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, task.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}
