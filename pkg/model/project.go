package model

import "time"

// Role is a project member's permission level
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Project groups tasks under a kanban board with ordered columns.
type Project struct {
	ID           string     `db:"id" json:"id"`
	OwnerID      string     `db:"owner_id" json:"owner_id"`
	Name         string     `db:"name" json:"name"`
	Description  *string    `db:"description" json:"description,omitempty"`
	StartDate    *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate      *time.Time `db:"end_date" json:"end_date,omitempty"`
	IsIndefinite bool       `db:"is_indefinite" json:"is_indefinite"`
	DeletedAt    *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// ProjectMember links a user to a project with a role.
type ProjectMember struct {
	ID        string    `db:"id" json:"id"`
	ProjectID string    `db:"project_id" json:"project_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Role      Role      `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// BoardColumn is one kanban column. Status is the stable key tasks carry;
// Title is only what the user sees. Position defines left-to-right order,
// unique per project.
type BoardColumn struct {
	ID        string    `db:"id" json:"id"`
	ProjectID string    `db:"project_id" json:"project_id"`
	Status    Status    `db:"status" json:"status"`
	Title     string    `db:"title" json:"title"`
	Color     string    `db:"color" json:"color"`
	Position  int       `db:"position" json:"position"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
