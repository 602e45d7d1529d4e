package realtime

// Kind is the change kind carried by an event.
type Kind string

const (
	KindInsert Kind = "insert"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
	// KindResync is emitted after a connection drop. It carries no row and
	// matches every scope, telling subscribers their mirror may be stale.
	KindResync Kind = "resync"
)

// Event is one change notification from the backend. UserID and ProjectID
// are the scope columns of the affected row; for deletes they come from the
// old row.
type Event struct {
	Table     string `json:"table"`
	Kind      Kind   `json:"kind"`
	ID        string `json:"id"`
	UserID    string `json:"user_id,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
}

// Scope selects which events a subscriber cares about. Zero-valued fields
// are wildcards.
type Scope struct {
	Table     string
	UserID    string
	ProjectID string
}

// Matches reports whether the event falls inside the scope.
func (s Scope) Matches(e Event) bool {
	if e.Kind == KindResync {
		return true
	}
	if s.Table != "" && s.Table != e.Table {
		return false
	}
	if s.UserID != "" && s.UserID != e.UserID {
		return false
	}
	if s.ProjectID != "" && s.ProjectID != e.ProjectID {
		return false
	}
	return true
}
