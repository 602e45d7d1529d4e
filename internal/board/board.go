// Package board implements the kanban workflow: project creation with
// default columns, column management, and moving tasks between columns.
//
// Tasks carry a stable status key and each column maps one status key to a
// display title, so renaming a column is a title update and never touches
// the tasks sitting in it.
package board

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/faro-app/faro/internal/logger"
	"github.com/faro-app/faro/internal/tables"
	"github.com/faro-app/faro/pkg/backend"
	"github.com/faro-app/faro/pkg/model"
)

// Columns are spaced by posGap so inserts between neighbors stay cheap.
const posGap = 1000

// Service owns board operations over the backend.
type Service struct {
	db       *sqlx.DB
	projects *backend.Resource[model.Project]
	members  *backend.Resource[model.ProjectMember]
	columns  *backend.Resource[model.BoardColumn]
	tasks    *backend.Resource[model.Task]
	log      *slog.Logger
}

func NewService(db *sqlx.DB) *Service {
	return &Service{
		db:       db,
		projects: backend.NewResource[model.Project](db, tables.Projects),
		members:  backend.NewResource[model.ProjectMember](db, tables.ProjectMembers),
		columns:  backend.NewResource[model.BoardColumn](db, tables.BoardColumns),
		tasks:    backend.NewResource[model.Task](db, tables.Tasks),
		log:      logger.Board(),
	}
}

func defaultColumns(projectID string) []model.BoardColumn {
	return []model.BoardColumn{
		{ID: uuid.NewString(), ProjectID: projectID, Status: model.StatusTodo, Title: "Novo", Color: "#3b82f6", Position: posGap},
		{ID: uuid.NewString(), ProjectID: projectID, Status: model.StatusInProgress, Title: "Em Andamento", Color: "#f59e0b", Position: 2 * posGap},
		{ID: uuid.NewString(), ProjectID: projectID, Status: model.StatusDone, Title: "Concluído", Color: "#22c55e", Position: 3 * posGap},
	}
}

// CreateProject inserts the project, its owner membership and the three
// default columns in one transaction.
func (s *Service) CreateProject(ctx context.Context, p *model.Project) (*model.Project, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	var created *model.Project
	err := backend.WithTransaction(ctx, s.db, func(tx *sqlx.Tx) error {
		var err error
		created, err = s.projects.WithExecutor(tx).Insert(ctx, p)
		if err != nil {
			return err
		}

		member := &model.ProjectMember{
			ID:        uuid.NewString(),
			ProjectID: created.ID,
			UserID:    created.OwnerID,
			Role:      model.RoleAdmin,
		}
		if _, err := s.members.WithExecutor(tx).Insert(ctx, member); err != nil {
			return err
		}

		cols := s.columns.WithExecutor(tx)
		for _, col := range defaultColumns(created.ID) {
			col := col
			if _, err := cols.Insert(ctx, &col); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("project created", "project_id", created.ID)
	return created, nil
}

// Columns returns the project's columns in board order.
func (s *Service) Columns(ctx context.Context, projectID string) ([]model.BoardColumn, error) {
	return s.columns.List(ctx, backend.Column[string]{Name: "project_id"}.Eq(projectID))
}

// AddColumn appends a column at the right edge of the board.
func (s *Service) AddColumn(ctx context.Context, projectID string, status model.Status, title, color string) (*model.BoardColumn, error) {
	var next int
	err := s.db.GetContext(ctx, &next,
		`SELECT COALESCE(MAX(position), 0) + $1 FROM board_columns WHERE project_id = $2`,
		posGap, projectID)
	if err != nil {
		return nil, fmt.Errorf("next column position: %w", err)
	}

	col := &model.BoardColumn{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Status:    status,
		Title:     title,
		Color:     color,
		Position:  next,
	}
	return s.columns.Insert(ctx, col)
}

// RenameColumn changes only the display title. Task statuses key on the
// column's status, so nothing else moves.
func (s *Service) RenameColumn(ctx context.Context, columnID, title string) (*model.BoardColumn, error) {
	return s.columns.Update(ctx, columnID, map[string]interface{}{"title": title})
}

// MoveColumn repositions a column on the board.
func (s *Service) MoveColumn(ctx context.Context, columnID string, position int) (*model.BoardColumn, error) {
	return s.columns.Update(ctx, columnID, map[string]interface{}{"position": position})
}

// DeleteColumn removes an empty column. Columns still holding tasks are
// refused so no task ends up with a dangling status.
func (s *Service) DeleteColumn(ctx context.Context, columnID string) error {
	col, err := s.columns.Get(ctx, columnID)
	if err != nil {
		return err
	}
	remaining, err := s.tasks.List(ctx,
		backend.Column[string]{Name: "project_id"}.Eq(col.ProjectID),
		backend.Column[string]{Name: "status"}.Eq(string(col.Status)))
	if err != nil {
		return err
	}
	if len(remaining) > 0 {
		return fmt.Errorf("column %q still holds %d tasks", col.Title, len(remaining))
	}
	return s.columns.Delete(ctx, columnID)
}

// MoveTask places a task into the given column by rewriting its status to
// the column's status key.
func (s *Service) MoveTask(ctx context.Context, taskID, columnID string) (*model.Task, error) {
	col, err := s.columns.Get(ctx, columnID)
	if err != nil {
		return nil, err
	}
	task, err := s.tasks.Update(ctx, taskID, map[string]interface{}{"status": string(col.Status)})
	if err != nil {
		return nil, err
	}
	s.log.Info("task moved", "task_id", taskID, "status", string(col.Status))
	return task, nil
}
