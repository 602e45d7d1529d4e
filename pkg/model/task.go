package model

import (
	"time"

	"github.com/lib/pq"
)

// Status is the stable workflow key for a task. Board columns map a Status
// to their display title, so renaming a column never rewrites tasks.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Priority represents task priority level
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Task is a single todo item, personal (nil ProjectID) or on a project board.
type Task struct {
	ID            string         `db:"id" json:"id"`
	UserID        string         `db:"user_id" json:"user_id"`
	Title         string         `db:"title" json:"title"`
	Description   *string        `db:"description" json:"description,omitempty"`
	Status        Status         `db:"status" json:"status"`
	Priority      Priority       `db:"priority" json:"priority"`
	StartDate     *time.Time     `db:"start_date" json:"start_date,omitempty"`
	DueDate       *time.Time     `db:"due_date" json:"due_date,omitempty"`
	IsIndefinite  bool           `db:"is_indefinite" json:"is_indefinite"`
	ProjectID     *string        `db:"project_id" json:"project_id,omitempty"`
	ResponsibleID *string        `db:"responsible_id" json:"responsible_id,omitempty"`
	Tags          pq.StringArray `db:"tags" json:"tags,omitempty"`
	GoalIDs       pq.StringArray `db:"goal_ids" json:"goal_ids,omitempty"`
	DeletedAt     *time.Time     `db:"deleted_at" json:"deleted_at,omitempty"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
}

// IsCompleted reports whether the task reached the done status.
func (t *Task) IsCompleted() bool {
	return t.Status == StatusDone
}

// IsOverdue reports whether the task is past its due date and not done.
// Tasks without a due date are never overdue.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.IsCompleted() {
		return false
	}
	due := t.DueDate.In(now.Location())
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dueDay.Before(today)
}

// IsDueToday reports whether the due date falls on the current calendar day.
func (t *Task) IsDueToday(now time.Time) bool {
	if t.DueDate == nil {
		return false
	}
	due := t.DueDate.In(now.Location())
	return due.Year() == now.Year() && due.YearDay() == now.YearDay()
}

// PriorityWeight returns a numeric weight for sorting by priority.
func (t *Task) PriorityWeight() int {
	switch t.Priority {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 2
	}
}
