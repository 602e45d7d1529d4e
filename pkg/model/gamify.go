package model

import "time"

// UserStats holds the per-user gamification counters.
type UserStats struct {
	ID                string     `db:"id" json:"id"`
	UserID            string     `db:"user_id" json:"user_id"`
	Level             int        `db:"level" json:"level"`
	XP                int        `db:"xp" json:"xp"`
	Streak            int        `db:"streak" json:"streak"`
	LastActivityAt    *time.Time `db:"last_activity_at" json:"last_activity_at,omitempty"`
	TasksCompleted    int        `db:"tasks_completed" json:"tasks_completed"`
	ProjectsCompleted int        `db:"projects_completed" json:"projects_completed"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// ConditionType selects which UserStats counter an unlock condition reads.
type ConditionType string

const (
	ConditionTasksCompleted    ConditionType = "tasks_completed"
	ConditionProjectsCompleted ConditionType = "projects_completed"
	ConditionStreak            ConditionType = "streak"
	ConditionLevel             ConditionType = "level"
	ConditionXP                ConditionType = "xp"
)

// Achievement is a static catalog entry unlocked when a counter reaches
// ConditionValue.
type Achievement struct {
	ID             string        `db:"id" json:"id"`
	Name           string        `db:"name" json:"name"`
	Description    string        `db:"description" json:"description"`
	Icon           string        `db:"icon" json:"icon"`
	ConditionType  ConditionType `db:"condition_type" json:"condition_type"`
	ConditionValue int           `db:"condition_value" json:"condition_value"`
	XPReward       int           `db:"xp_reward" json:"xp_reward"`
}

// Badge is a static catalog entry, same unlock mechanics as Achievement.
type Badge struct {
	ID             string        `db:"id" json:"id"`
	Name           string        `db:"name" json:"name"`
	Icon           string        `db:"icon" json:"icon"`
	ConditionType  ConditionType `db:"condition_type" json:"condition_type"`
	ConditionValue int           `db:"condition_value" json:"condition_value"`
}

// UserAchievement records one unlocked achievement.
type UserAchievement struct {
	ID            string    `db:"id" json:"id"`
	UserID        string    `db:"user_id" json:"user_id"`
	AchievementID string    `db:"achievement_id" json:"achievement_id"`
	UnlockedAt    time.Time `db:"unlocked_at" json:"unlocked_at"`
}

// UserBadge records one unlocked badge.
type UserBadge struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	BadgeID    string    `db:"badge_id" json:"badge_id"`
	UnlockedAt time.Time `db:"unlocked_at" json:"unlocked_at"`
}

// Counter returns the stats counter selected by a condition type.
func (s *UserStats) Counter(ct ConditionType) int {
	switch ct {
	case ConditionTasksCompleted:
		return s.TasksCompleted
	case ConditionProjectsCompleted:
		return s.ProjectsCompleted
	case ConditionStreak:
		return s.Streak
	case ConditionLevel:
		return s.Level
	case ConditionXP:
		return s.XP
	default:
		return 0
	}
}
