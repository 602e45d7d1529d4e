package views

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/faro-app/faro/pkg/model"
)

func TestFilterGoals(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	goals := []model.Goal{
		{ID: "open", TargetValue: 10, CurrentValue: 3},
		{ID: "reached", TargetValue: 5, CurrentValue: 5},
		{ID: "over", TargetValue: 5, CurrentValue: 7},
		{ID: "expired", TargetValue: 10, CurrentValue: 1, EndDate: datePtr(now.AddDate(0, 0, -1))},
		{ID: "ends-today", TargetValue: 10, CurrentValue: 1, EndDate: datePtr(now)},
	}

	ids := func(out []model.Goal) []string {
		var got []string
		for _, g := range out {
			got = append(got, g.ID)
		}
		return got
	}

	t.Run("all", func(t *testing.T) {
		assert.Len(t, FilterGoals(goals, GoalFilterAll, now), len(goals))
	})

	t.Run("completed means target reached", func(t *testing.T) {
		assert.Equal(t, []string{"reached", "over"}, ids(FilterGoals(goals, GoalFilterCompleted, now)))
	})

	t.Run("active excludes reached and expired, end date inclusive", func(t *testing.T) {
		assert.Equal(t, []string{"open", "ends-today"}, ids(FilterGoals(goals, GoalFilterActive, now)))
	})
}

func TestGoalProgress(t *testing.T) {
	t.Run("fraction of target", func(t *testing.T) {
		g := model.Goal{TargetValue: 10, CurrentValue: 3}
		assert.InDelta(t, 0.3, g.Progress(), 0.001)
	})

	t.Run("caps at one", func(t *testing.T) {
		g := model.Goal{TargetValue: 5, CurrentValue: 7}
		assert.Equal(t, 1.0, g.Progress())
	})

	t.Run("zero target never divides", func(t *testing.T) {
		g := model.Goal{TargetValue: 0, CurrentValue: 3}
		assert.Zero(t, g.Progress())
	})
}
