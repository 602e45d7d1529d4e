// Package tables holds the backend table metadata for every synchronized
// resource. Column lists match the model structs and the schema migrations;
// keep the three in step.
package tables

import "github.com/faro-app/faro/pkg/backend"

var Users = backend.Table{
	Name:          "users",
	Columns:       []string{"id", "email", "name", "avatar_url", "created_at", "updated_at"},
	InsertColumns: []string{"id", "email", "name", "avatar_url"},
	DefaultOrder:  []string{"created_at ASC"},
}

var Tasks = backend.Table{
	Name: "tasks",
	Columns: []string{
		"id", "user_id", "title", "description", "status", "priority",
		"start_date", "due_date", "is_indefinite", "project_id",
		"responsible_id", "tags", "goal_ids", "deleted_at", "created_at",
		"updated_at",
	},
	InsertColumns: []string{
		"id", "user_id", "title", "description", "status", "priority",
		"start_date", "due_date", "is_indefinite", "project_id",
		"responsible_id", "tags", "goal_ids",
	},
	SoftDelete:   true,
	DefaultOrder: []string{"created_at DESC"},
}

var Projects = backend.Table{
	Name: "projects",
	Columns: []string{
		"id", "owner_id", "name", "description", "start_date", "end_date",
		"is_indefinite", "deleted_at", "created_at", "updated_at",
	},
	InsertColumns: []string{
		"id", "owner_id", "name", "description", "start_date", "end_date",
		"is_indefinite",
	},
	SoftDelete:   true,
	DefaultOrder: []string{"created_at DESC"},
}

var ProjectMembers = backend.Table{
	Name:          "project_members",
	Columns:       []string{"id", "project_id", "user_id", "role", "created_at"},
	InsertColumns: []string{"id", "project_id", "user_id", "role"},
	DefaultOrder:  []string{"created_at ASC"},
}

var BoardColumns = backend.Table{
	Name:          "board_columns",
	Columns:       []string{"id", "project_id", "status", "title", "color", "position", "created_at"},
	InsertColumns: []string{"id", "project_id", "status", "title", "color", "position"},
	DefaultOrder:  []string{"position ASC"},
}

var Goals = backend.Table{
	Name: "goals",
	Columns: []string{
		"id", "user_id", "title", "description", "priority", "start_date",
		"end_date", "target_value", "current_value", "project_ids",
		"task_ids", "deleted_at", "created_at", "updated_at",
	},
	InsertColumns: []string{
		"id", "user_id", "title", "description", "priority", "start_date",
		"end_date", "target_value", "current_value", "project_ids", "task_ids",
	},
	SoftDelete:   true,
	DefaultOrder: []string{"created_at DESC"},
}

// TrashItems is not itself soft-deleted: its deleted_at column records when
// the referenced entity went into the trash, it is not a deletion marker.
var TrashItems = backend.Table{
	Name:          "trash_items",
	Columns:       []string{"id", "user_id", "item_type", "item_id", "item_data", "deleted_at", "expires_at"},
	InsertColumns: []string{"id", "user_id", "item_type", "item_id", "item_data", "deleted_at", "expires_at"},
	DefaultOrder:  []string{"deleted_at DESC"},
}

var UserStats = backend.Table{
	Name: "user_stats",
	Columns: []string{
		"id", "user_id", "level", "xp", "streak", "last_activity_at",
		"tasks_completed", "projects_completed", "updated_at",
	},
	InsertColumns: []string{
		"id", "user_id", "level", "xp", "streak", "last_activity_at",
		"tasks_completed", "projects_completed",
	},
	DefaultOrder: []string{"user_id ASC"},
}

var Achievements = backend.Table{
	Name:          "achievements",
	Columns:       []string{"id", "name", "description", "icon", "condition_type", "condition_value", "xp_reward"},
	InsertColumns: []string{"id", "name", "description", "icon", "condition_type", "condition_value", "xp_reward"},
	DefaultOrder:  []string{"condition_value ASC"},
}

var Badges = backend.Table{
	Name:          "badges",
	Columns:       []string{"id", "name", "icon", "condition_type", "condition_value"},
	InsertColumns: []string{"id", "name", "icon", "condition_type", "condition_value"},
	DefaultOrder:  []string{"condition_value ASC"},
}

var UserAchievements = backend.Table{
	Name:          "user_achievements",
	Columns:       []string{"id", "user_id", "achievement_id", "unlocked_at"},
	InsertColumns: []string{"id", "user_id", "achievement_id"},
	DefaultOrder:  []string{"unlocked_at DESC"},
}

var UserBadges = backend.Table{
	Name:          "user_badges",
	Columns:       []string{"id", "user_id", "badge_id", "unlocked_at"},
	InsertColumns: []string{"id", "user_id", "badge_id"},
	DefaultOrder:  []string{"unlocked_at DESC"},
}

var Coupons = backend.Table{
	Name: "coupons",
	Columns: []string{
		"id", "code", "discount_percent", "is_free_month", "is_permanent",
		"max_uses", "current_uses", "expires_at", "created_at",
	},
	InsertColumns: []string{
		"id", "code", "discount_percent", "is_free_month", "is_permanent",
		"max_uses", "expires_at",
	},
	DefaultOrder: []string{"created_at ASC"},
}

var UserCoupons = backend.Table{
	Name:          "user_coupons",
	Columns:       []string{"id", "user_id", "coupon_id", "code", "redeemed_at"},
	InsertColumns: []string{"id", "user_id", "coupon_id", "code"},
	DefaultOrder:  []string{"redeemed_at DESC"},
}
