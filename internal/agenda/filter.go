// Package agenda derives what the list screens show: filtered tasks, sorted
// notes, overview counts and the loading/error state around them.
package agenda

import (
	"sort"
	"strings"

	"github.com/sadopc/orgauns/internal/store"
)

type Status int

const (
	StatusAll Status = iota
	StatusPending
	StatusCompleted
	StatusWithDate
	StatusWithoutDate
)

var statusNames = []string{"all", "pending", "completed", "with date", "without date"}

func (s Status) String() string {
	if int(s) < len(statusNames) && s >= 0 {
		return statusNames[s]
	}
	return "unknown"
}

// Next cycles through the statuses, wrapping after StatusWithoutDate.
func (s Status) Next() Status {
	return (s + 1) % Status(len(statusNames))
}

// ParseStatus accepts the names printed by String, with "-" or "_" for spaces.
func ParseStatus(name string) (Status, bool) {
	name = strings.NewReplacer("-", " ", "_", " ").Replace(strings.ToLower(strings.TrimSpace(name)))
	for i, n := range statusNames {
		if n == name {
			return Status(i), true
		}
	}
	return StatusAll, false
}

// TaskFilter is the search box plus the two chip rows of the task list.
// The zero value matches everything.
type TaskFilter struct {
	Query    string
	Status   Status
	Priority store.Priority // 0 = any
}

func (f TaskFilter) IsZero() bool {
	return strings.TrimSpace(f.Query) == "" && f.Status == StatusAll && f.Priority == 0
}

// Apply returns the matching tasks in input order.
func (f TaskFilter) Apply(tasks []store.Task) []store.Task {
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]store.Task, 0, len(tasks))
	for _, t := range tasks {
		if q != "" &&
			!strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			continue
		}
		if !f.Status.matches(t) {
			continue
		}
		if f.Priority != 0 && t.Priority != f.Priority {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (s Status) matches(t store.Task) bool {
	switch s {
	case StatusPending:
		return !t.Done
	case StatusCompleted:
		return t.Done
	case StatusWithDate:
		return t.DueAt != nil
	case StatusWithoutDate:
		return t.DueAt == nil
	}
	return true
}

// SortNotes orders notes most recently updated first. The input is not
// modified.
func SortNotes(notes []store.Note) []store.Note {
	out := make([]store.Note, len(notes))
	copy(out, notes)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}
