// Package views computes filtered and aggregated projections over mirror
// snapshots. Everything here is pure: functions take an explicit now, never
// touch the clock, and never mutate their input.
package views

import (
	"time"

	"github.com/faro-app/faro/pkg/model"
)

// TaskFilter names one task tab.
type TaskFilter string

const (
	TaskFilterAll       TaskFilter = "all"
	TaskFilterToday     TaskFilter = "today"
	TaskFilterUpcoming  TaskFilter = "upcoming"
	TaskFilterOverdue   TaskFilter = "overdue"
	TaskFilterCompleted TaskFilter = "completed"
)

func startOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// FilterTasks returns the tasks matching filter at the given instant.
//
// Calendar comparisons use now's location. Tasks without a due date never
// appear in today, upcoming or overdue; they still show up in all and, when
// done, in completed. For tasks with a due date, {today, upcoming, overdue}
// partition by calendar day, except that done tasks are never overdue —
// completed is an orthogonal axis, not part of the partition.
func FilterTasks(tasks []model.Task, filter TaskFilter, now time.Time) []model.Task {
	if filter == TaskFilterAll {
		out := make([]model.Task, len(tasks))
		copy(out, tasks)
		return out
	}

	today := startOfDay(now, now.Location())
	var out []model.Task
	for _, t := range tasks {
		switch filter {
		case TaskFilterCompleted:
			if t.IsCompleted() {
				out = append(out, t)
			}
		case TaskFilterToday:
			if t.DueDate != nil && startOfDay(*t.DueDate, now.Location()).Equal(today) {
				out = append(out, t)
			}
		case TaskFilterUpcoming:
			if t.DueDate != nil && startOfDay(*t.DueDate, now.Location()).After(today) {
				out = append(out, t)
			}
		case TaskFilterOverdue:
			if t.DueDate != nil && startOfDay(*t.DueDate, now.Location()).Before(today) && !t.IsCompleted() {
				out = append(out, t)
			}
		}
	}
	return out
}

// TasksForColumn returns the tasks sitting in one board column, matched by
// the column's stable status key.
func TasksForColumn(tasks []model.Task, col model.BoardColumn) []model.Task {
	var out []model.Task
	for _, t := range tasks {
		if t.Status == col.Status {
			out = append(out, t)
		}
	}
	return out
}
