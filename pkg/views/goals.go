package views

import (
	"time"

	"github.com/faro-app/faro/pkg/model"
)

// GoalFilter names one goal tab.
type GoalFilter string

const (
	GoalFilterAll       GoalFilter = "all"
	GoalFilterActive    GoalFilter = "active"
	GoalFilterCompleted GoalFilter = "completed"
)

// FilterGoals returns the goals matching filter at the given instant.
// A goal is active while its current value is below target and its end
// date, if any, has not passed (end date inclusive, calendar-day
// comparison in now's location).
func FilterGoals(goals []model.Goal, filter GoalFilter, now time.Time) []model.Goal {
	if filter == GoalFilterAll {
		out := make([]model.Goal, len(goals))
		copy(out, goals)
		return out
	}

	today := startOfDay(now, now.Location())
	var out []model.Goal
	for _, g := range goals {
		switch filter {
		case GoalFilterCompleted:
			if g.IsCompleted() {
				out = append(out, g)
			}
		case GoalFilterActive:
			if g.IsCompleted() {
				continue
			}
			if g.EndDate != nil && startOfDay(*g.EndDate, now.Location()).Before(today) {
				continue
			}
			out = append(out, g)
		}
	}
	return out
}
