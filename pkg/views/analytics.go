package views

import (
	"time"

	"github.com/faro-app/faro/pkg/model"
)

// Period selects the analytics window.
type Period string

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Bucket is one time slot of an activity chart.
type Bucket struct {
	Start     time.Time
	Label     string
	Completed int
	Pending   int
}

// BucketActivity partitions items by creation time into the buckets of the
// period ending at now: the last 7 days for week (one bucket per day), the
// last 5 weeks for month (one per week), the last 12 months for year (one
// per month). Items created outside the window are skipped. Bucket
// boundaries are derived from now, so two calls only agree when the caller
// freezes now.
func BucketActivity[T any](items []T, createdAt func(*T) time.Time, completed func(*T) bool, period Period, now time.Time) []Bucket {
	loc := now.Location()
	var buckets []Bucket

	switch period {
	case PeriodWeek:
		day := startOfDay(now, loc).AddDate(0, 0, -6)
		for i := 0; i < 7; i++ {
			buckets = append(buckets, Bucket{Start: day, Label: day.Format("Mon")})
			day = day.AddDate(0, 0, 1)
		}
	case PeriodMonth:
		week := startOfDay(now, loc).AddDate(0, 0, -7*4)
		for i := 0; i < 5; i++ {
			buckets = append(buckets, Bucket{Start: week, Label: week.Format("Jan 2")})
			week = week.AddDate(0, 0, 7)
		}
	case PeriodYear:
		month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc).AddDate(0, -11, 0)
		for i := 0; i < 12; i++ {
			buckets = append(buckets, Bucket{Start: month, Label: month.Format("Jan")})
			month = month.AddDate(0, 1, 0)
		}
	default:
		return nil
	}

	for i := range items {
		created := createdAt(&items[i]).In(loc)
		if created.Before(buckets[0].Start) || created.After(now) {
			continue
		}
		// Find the last bucket starting at or before created.
		idx := -1
		for b := range buckets {
			if !buckets[b].Start.After(created) {
				idx = b
			}
		}
		if idx < 0 {
			continue
		}
		if completed(&items[i]) {
			buckets[idx].Completed++
		} else {
			buckets[idx].Pending++
		}
	}
	return buckets
}

// BucketTasks is BucketActivity specialized for tasks.
func BucketTasks(tasks []model.Task, period Period, now time.Time) []Bucket {
	return BucketActivity(tasks,
		func(t *model.Task) time.Time { return t.CreatedAt },
		func(t *model.Task) bool { return t.IsCompleted() },
		period, now)
}

// BucketGoals is BucketActivity specialized for goals.
func BucketGoals(goals []model.Goal, period Period, now time.Time) []Bucket {
	return BucketActivity(goals,
		func(g *model.Goal) time.Time { return g.CreatedAt },
		func(g *model.Goal) bool { return g.IsCompleted() },
		period, now)
}
