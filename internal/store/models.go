package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Priority of a task; stored as 1..3.
type Priority int

const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
)

var priorityNames = map[Priority]string{
	PriorityLow:    "low",
	PriorityMedium: "medium",
	PriorityHigh:   "high",
}

func (p Priority) String() string {
	if n, ok := priorityNames[p]; ok {
		return n
	}
	return "priority(" + strconv.Itoa(int(p)) + ")"
}

func (p Priority) Valid() bool {
	_, ok := priorityNames[p]
	return ok
}

// ParsePriority accepts a name ("high") or its number ("3").
func ParsePriority(s string) (Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, n := range priorityNames {
		if s == n || s == strconv.Itoa(int(p)) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown priority %q", s)
}

type Task struct {
	ID          string
	UserID      string
	Title       string
	Description string
	DueAt       *int64 // epoch millis
	Priority    Priority
	Done        bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Due returns the due instant, if any.
func (t Task) Due() (time.Time, bool) {
	if t.DueAt == nil {
		return time.Time{}, false
	}
	return time.UnixMilli(*t.DueAt), true
}

// DueMillis is a helper for building a DueAt pointer.
func DueMillis(t time.Time) *int64 {
	ms := t.UnixMilli()
	return &ms
}

type Note struct {
	ID        string
	UserID    string
	Title     string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Setting struct {
	Key   string
	Value string
}

const (
	SyncSucceeded = "succeeded"
	SyncFailed    = "failed"
)

// SyncRun records one execution of the background sync job.
type SyncRun struct {
	ID        int64
	UserID    string
	TaskCount int
	NoteCount int
	Status    string
	Message   string
	RanAt     time.Time
}
