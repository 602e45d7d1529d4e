// Package gamify maintains the per-user gamification counters and the
// unlock state against the achievement and badge catalogs.
package gamify

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/faro-app/faro/internal/logger"
	"github.com/faro-app/faro/internal/tables"
	"github.com/faro-app/faro/pkg/backend"
	"github.com/faro-app/faro/pkg/model"
)

// XP awards per event.
const (
	XPPerTask    = 10
	XPPerProject = 50
	XPPerLevel   = 100
)

// LevelForXP maps total XP to a level, one level per XPPerLevel.
func LevelForXP(xp int) int {
	if xp < 0 {
		return 1
	}
	return xp/XPPerLevel + 1
}

// Progress computes how far stats are toward one unlock condition, in
// [0, 1].
func Progress(stats *model.UserStats, ct model.ConditionType, value int) float64 {
	if value <= 0 {
		return 1
	}
	p := float64(stats.Counter(ct)) / float64(value)
	if p > 1 {
		return 1
	}
	return p
}

// Engine applies gamification events and persists the results.
type Engine struct {
	stats            *backend.Resource[model.UserStats]
	achievements     *backend.Resource[model.Achievement]
	badges           *backend.Resource[model.Badge]
	userAchievements *backend.Resource[model.UserAchievement]
	userBadges       *backend.Resource[model.UserBadge]
	now              func() time.Time
	log              *slog.Logger
}

func NewEngine(db *sqlx.DB) *Engine {
	return &Engine{
		stats:            backend.NewResource[model.UserStats](db, tables.UserStats),
		achievements:     backend.NewResource[model.Achievement](db, tables.Achievements),
		badges:           backend.NewResource[model.Badge](db, tables.Badges),
		userAchievements: backend.NewResource[model.UserAchievement](db, tables.UserAchievements),
		userBadges:       backend.NewResource[model.UserBadge](db, tables.UserBadges),
		now:              time.Now,
		log:              logger.Gamify(),
	}
}

// Stats returns the user's counters, creating the zero row on first use.
func (e *Engine) Stats(ctx context.Context, userID string) (*model.UserStats, error) {
	rows, err := e.stats.List(ctx, backend.Column[string]{Name: "user_id"}.Eq(userID))
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return &rows[0], nil
	}

	fresh := &model.UserStats{ID: uuid.NewString(), UserID: userID, Level: 1}
	created, err := e.stats.Insert(ctx, fresh)
	if errors.Is(err, backend.ErrDuplicate) {
		// Two clients raced the first event; take the winner's row.
		rows, lerr := e.stats.List(ctx, backend.Column[string]{Name: "user_id"}.Eq(userID))
		if lerr == nil && len(rows) > 0 {
			return &rows[0], nil
		}
		return nil, err
	}
	return created, err
}

// OnTaskCompleted awards task XP, bumps the streak and counters, persists
// the stats and checks for new unlocks.
func (e *Engine) OnTaskCompleted(ctx context.Context, userID string) (*model.UserStats, error) {
	return e.apply(ctx, userID, func(s *model.UserStats) {
		s.TasksCompleted++
		s.XP += XPPerTask
	})
}

// OnProjectCompleted awards project XP and bumps the project counter.
func (e *Engine) OnProjectCompleted(ctx context.Context, userID string) (*model.UserStats, error) {
	return e.apply(ctx, userID, func(s *model.UserStats) {
		s.ProjectsCompleted++
		s.XP += XPPerProject
	})
}

func (e *Engine) apply(ctx context.Context, userID string, mutate func(*model.UserStats)) (*model.UserStats, error) {
	stats, err := e.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	stats.Streak = nextStreak(stats.LastActivityAt, stats.Streak, now)
	stats.LastActivityAt = &now
	mutate(stats)
	stats.Level = LevelForXP(stats.XP)

	updated, err := e.stats.Update(ctx, stats.ID, map[string]interface{}{
		"level":              stats.Level,
		"xp":                 stats.XP,
		"streak":             stats.Streak,
		"last_activity_at":   now,
		"tasks_completed":    stats.TasksCompleted,
		"projects_completed": stats.ProjectsCompleted,
	})
	if err != nil {
		return nil, err
	}

	if err := e.checkUnlocks(ctx, updated); err != nil {
		// Unlocks are recoverable: the next event re-evaluates them.
		e.log.Error("check unlocks", "user_id", userID, "err", err)
	}
	return updated, nil
}

// nextStreak continues the streak on consecutive calendar days, keeps it on
// same-day repeats and resets it after a gap.
func nextStreak(last *time.Time, streak int, now time.Time) int {
	if last == nil {
		return 1
	}
	lastDay := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch days := int(today.Sub(lastDay).Hours() / 24); days {
	case 0:
		if streak < 1 {
			return 1
		}
		return streak
	case 1:
		return streak + 1
	default:
		return 1
	}
}

// checkUnlocks inserts unlock rows for every condition the stats now meet.
// Unique indexes on (user_id, achievement_id) and (user_id, badge_id) make
// the inserts idempotent; duplicates are simply skipped.
func (e *Engine) checkUnlocks(ctx context.Context, stats *model.UserStats) error {
	achievements, err := e.achievements.List(ctx)
	if err != nil {
		return err
	}
	for _, a := range achievements {
		if stats.Counter(a.ConditionType) < a.ConditionValue {
			continue
		}
		ua := &model.UserAchievement{ID: uuid.NewString(), UserID: stats.UserID, AchievementID: a.ID}
		if _, err := e.userAchievements.Insert(ctx, ua); err != nil {
			if errors.Is(err, backend.ErrDuplicate) {
				continue
			}
			return err
		}
		e.log.Info("achievement unlocked", "user_id", stats.UserID, "achievement", a.Name)
	}

	badges, err := e.badges.List(ctx)
	if err != nil {
		return err
	}
	for _, b := range badges {
		if stats.Counter(b.ConditionType) < b.ConditionValue {
			continue
		}
		ub := &model.UserBadge{ID: uuid.NewString(), UserID: stats.UserID, BadgeID: b.ID}
		if _, err := e.userBadges.Insert(ctx, ub); err != nil {
			if errors.Is(err, backend.ErrDuplicate) {
				continue
			}
			return err
		}
		e.log.Info("badge unlocked", "user_id", stats.UserID, "badge", b.Name)
	}
	return nil
}
