package model

import (
	"encoding/json"
	"time"
)

// ItemType identifies which table a trash item points back to.
type ItemType string

const (
	ItemTypeTask    ItemType = "task"
	ItemTypeProject ItemType = "project"
	ItemTypeGoal    ItemType = "goal"
)

// RetentionPeriod is how long a trashed item stays restorable.
const RetentionPeriod = 30 * 24 * time.Hour

// TrashItem records one soft-deleted entity. ItemData is a full snapshot of
// the entity at deletion time so the trash view renders without querying the
// soft-deleted original.
type TrashItem struct {
	ID        string          `db:"id" json:"id"`
	UserID    string          `db:"user_id" json:"user_id"`
	ItemType  ItemType        `db:"item_type" json:"item_type"`
	ItemID    string          `db:"item_id" json:"item_id"`
	ItemData  json.RawMessage `db:"item_data" json:"item_data"`
	DeletedAt time.Time       `db:"deleted_at" json:"deleted_at"`
	ExpiresAt time.Time       `db:"expires_at" json:"expires_at"`
}

// IsExpired reports whether the item is past its retention window and
// eligible for the backend purge job.
func (t *TrashItem) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
