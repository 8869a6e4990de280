package calendar

import (
	"time"

	"github.com/sadopc/orgauns/internal/store"
)

// TasksOnDate returns the tasks due on d in the local zone, in input order.
// Tasks without a due instant are never included.
func TasksOnDate(tasks []store.Task, d Date) []store.Task {
	return TasksOnDateIn(tasks, d, time.Local)
}

// TasksOnDateIn is TasksOnDate with due instants read in loc.
func TasksOnDateIn(tasks []store.Task, d Date, loc *time.Location) []store.Task {
	var out []store.Task
	for _, t := range tasks {
		if t.DueAt == nil {
			continue
		}
		if ToDateIn(*t.DueAt, loc) == d {
			out = append(out, t)
		}
	}
	return out
}

// DatesWithTasks returns the set of dates inside ym that have at least one
// task due in the local zone.
func DatesWithTasks(tasks []store.Task, ym YearMonth) map[Date]struct{} {
	return DatesWithTasksIn(tasks, ym, time.Local)
}

// DatesWithTasksIn is DatesWithTasks with due instants read in loc.
func DatesWithTasksIn(tasks []store.Task, ym YearMonth, loc *time.Location) map[Date]struct{} {
	set := make(map[Date]struct{})
	for _, t := range tasks {
		if t.DueAt == nil {
			continue
		}
		d := ToDateIn(*t.DueAt, loc)
		if ym.Contains(d) {
			set[d] = struct{}{}
		}
	}
	return set
}

// GroupByDate buckets tasks by local due date; undated tasks are skipped.
func GroupByDate(tasks []store.Task) map[Date][]store.Task {
	return GroupByDateIn(tasks, time.Local)
}

// GroupByDateIn is GroupByDate with due instants read in loc.
func GroupByDateIn(tasks []store.Task, loc *time.Location) map[Date][]store.Task {
	out := make(map[Date][]store.Task)
	for _, t := range tasks {
		if t.DueAt == nil {
			continue
		}
		d := ToDateIn(*t.DueAt, loc)
		out[d] = append(out[d], t)
	}
	return out
}
