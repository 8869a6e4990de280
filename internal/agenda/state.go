package agenda

import (
	"errors"
	"time"

	"github.com/sadopc/orgauns/internal/calendar"
	"github.com/sadopc/orgauns/internal/store"
)

// ScreenState is what a list screen renders: the latest items, whether a
// mutation is in flight and the message of the last failure.
type ScreenState[T any] struct {
	Items   []T
	Loading bool
	Err     string
}

type Event interface{ event() }

type (
	Loaded[T any]     struct{ Items []T }
	LoadFailed        struct{ Err error }
	MutationStarted   struct{}
	MutationSucceeded struct{}
	MutationFailed    struct{ Err error }
	ClearError        struct{}
)

func (Loaded[T]) event()        {}
func (LoadFailed) event()        {}
func (MutationStarted) event()   {}
func (MutationSucceeded) event() {}
func (MutationFailed) event()    {}
func (ClearError) event()        {}

// Reduce applies ev to s. Failures are kept as one readable message and are
// never retried.
func Reduce[T any](s ScreenState[T], ev Event) ScreenState[T] {
	switch e := ev.(type) {
	case Loaded[T]:
		s.Items = e.Items
		s.Loading = false
	case LoadFailed:
		s.Loading = false
		s.Err = ErrorMessage(e.Err)
	case MutationStarted:
		s.Loading = true
		s.Err = ""
	case MutationSucceeded:
		s.Loading = false
	case MutationFailed:
		s.Loading = false
		s.Err = ErrorMessage(e.Err)
	case ClearError:
		s.Err = ""
	}
	return s
}

// ErrorMessage is the text shown in a screen's error line.
func ErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, store.ErrNotAuthenticated):
		return "User not authenticated"
	case errors.Is(err, store.ErrNotFound):
		return "Item no longer exists"
	default:
		return err.Error()
	}
}

// Summary holds the overview counts.
type Summary struct {
	Total    int
	Pending  int
	Done     int
	Overdue  int
	DueToday int
	NoDate   int
}

// Overview counts tasks relative to now. Overdue tasks are pending ones whose
// due instant has passed; due-today uses the calendar date of now.
func Overview(tasks []store.Task, now time.Time) Summary {
	today := calendar.DateOf(now)
	var s Summary
	for _, t := range tasks {
		s.Total++
		if t.Done {
			s.Done++
		} else {
			s.Pending++
		}
		due, ok := t.Due()
		if !ok {
			s.NoDate++
			continue
		}
		if calendar.DateOf(due.In(now.Location())) == today && !t.Done {
			s.DueToday++
		}
		if !t.Done && due.Before(now) {
			s.Overdue++
		}
	}
	return s
}

// Upcoming returns, for each of the n days starting at now's date, how many
// pending tasks are due that day.
func Upcoming(tasks []store.Task, now time.Time, n int) []DayCount {
	start := calendar.DateOf(now)
	byDate := calendar.GroupByDateIn(tasks, now.Location())
	out := make([]DayCount, n)
	for i := range out {
		d := start.AddDays(i)
		out[i].Date = d
		for _, t := range byDate[d] {
			if !t.Done {
				out[i].Count++
			}
		}
	}
	return out
}

type DayCount struct {
	Date  calendar.Date
	Count int
}
