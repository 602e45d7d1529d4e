package model

import (
	"time"

	"github.com/lib/pq"
)

// Goal is a measurable objective, optionally linked to projects and tasks.
type Goal struct {
	ID           string         `db:"id" json:"id"`
	UserID       string         `db:"user_id" json:"user_id"`
	Title        string         `db:"title" json:"title"`
	Description  *string        `db:"description" json:"description,omitempty"`
	Priority     Priority       `db:"priority" json:"priority"`
	StartDate    *time.Time     `db:"start_date" json:"start_date,omitempty"`
	EndDate      *time.Time     `db:"end_date" json:"end_date,omitempty"`
	TargetValue  int            `db:"target_value" json:"target_value"`
	CurrentValue int            `db:"current_value" json:"current_value"`
	ProjectIDs   pq.StringArray `db:"project_ids" json:"project_ids,omitempty"`
	TaskIDs      pq.StringArray `db:"task_ids" json:"task_ids,omitempty"`
	DeletedAt    *time.Time     `db:"deleted_at" json:"deleted_at,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// IsCompleted reports whether the goal reached its target.
func (g *Goal) IsCompleted() bool {
	return g.CurrentValue >= g.TargetValue
}

// Progress returns completion as a fraction in [0, 1].
func (g *Goal) Progress() float64 {
	if g.TargetValue <= 0 {
		return 0
	}
	p := float64(g.CurrentValue) / float64(g.TargetValue)
	if p > 1 {
		return 1
	}
	return p
}
