package agenda

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sadopc/orgauns/internal/calendar"
	"github.com/sadopc/orgauns/internal/store"
)

var now = time.Date(2024, time.March, 14, 10, 0, 0, 0, time.UTC)

func sampleTasks() []store.Task {
	return []store.Task{
		{ID: "1", Title: "Buy milk", Priority: store.PriorityLow},
		{ID: "2", Title: "Exam", Description: "Calculus MIDTERM", Priority: store.PriorityHigh,
			DueAt: store.DueMillis(now.Add(2 * time.Hour))},
		{ID: "3", Title: "Report", Priority: store.PriorityMedium, Done: true,
			DueAt: store.DueMillis(now.Add(-48 * time.Hour))},
		{ID: "4", Title: "Dentist", Priority: store.PriorityHigh,
			DueAt: store.DueMillis(now.Add(-time.Hour))},
	}
}

func ids(tasks []store.Task) string {
	s := ""
	for _, t := range tasks {
		s += t.ID
	}
	return s
}

// ==================== TaskFilter ====================

func TestTaskFilterApply(t *testing.T) {
	tests := []struct {
		name   string
		filter TaskFilter
		want   string
	}{
		{"zero value", TaskFilter{}, "1234"},
		{"title search", TaskFilter{Query: "milk"}, "1"},
		{"description search ignores case", TaskFilter{Query: "midterm"}, "2"},
		{"blank query", TaskFilter{Query: "   "}, "1234"},
		{"pending", TaskFilter{Status: StatusPending}, "124"},
		{"completed", TaskFilter{Status: StatusCompleted}, "3"},
		{"with date", TaskFilter{Status: StatusWithDate}, "234"},
		{"without date", TaskFilter{Status: StatusWithoutDate}, "1"},
		{"priority", TaskFilter{Priority: store.PriorityHigh}, "24"},
		{"combined", TaskFilter{Query: "e", Status: StatusPending, Priority: store.PriorityHigh}, "24"},
		{"no match", TaskFilter{Query: "zzz"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ids(tt.filter.Apply(sampleTasks())); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTaskFilterIsZero(t *testing.T) {
	if !(TaskFilter{}).IsZero() {
		t.Fatal("zero filter should report IsZero")
	}
	if (TaskFilter{Status: StatusCompleted}).IsZero() {
		t.Fatal("status filter is not zero")
	}
}

func TestStatusCycleAndParse(t *testing.T) {
	s := StatusAll
	for i := 0; i < 5; i++ {
		s = s.Next()
	}
	if s != StatusAll {
		t.Fatalf("expected wrap to all, got %v", s)
	}
	if got, ok := ParseStatus("without-date"); !ok || got != StatusWithoutDate {
		t.Fatalf("ParseStatus = %v, %v", got, ok)
	}
	if _, ok := ParseStatus("later"); ok {
		t.Fatal("unknown status should not parse")
	}
}

// ==================== Notes ====================

func TestSortNotes(t *testing.T) {
	in := []store.Note{
		{ID: "a", UpdatedAt: now.Add(-time.Hour)},
		{ID: "b", UpdatedAt: now},
		{ID: "c", UpdatedAt: now.Add(-2 * time.Hour)},
	}
	out := SortNotes(in)
	if out[0].ID != "b" || out[1].ID != "a" || out[2].ID != "c" {
		t.Fatalf("unexpected order %v", out)
	}
	if in[0].ID != "a" {
		t.Fatal("input was modified")
	}
}

// ==================== ScreenState ====================

func TestReduceLifecycle(t *testing.T) {
	var s ScreenState[store.Task]

	s = Reduce(s, MutationStarted{})
	if !s.Loading {
		t.Fatal("expected loading")
	}
	s = Reduce(s, MutationFailed{Err: store.ErrNotAuthenticated})
	if s.Loading || s.Err != "User not authenticated" {
		t.Fatalf("unexpected state %+v", s)
	}
	s = Reduce(s, ClearError{})
	if s.Err != "" {
		t.Fatal("error not cleared")
	}

	s = Reduce(s, MutationStarted{})
	s = Reduce(s, MutationSucceeded{})
	if s.Loading || s.Err != "" {
		t.Fatalf("unexpected state %+v", s)
	}

	s = Reduce[store.Task](s, Loaded[store.Task]{Items: sampleTasks()})
	if len(s.Items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(s.Items))
	}
}

func TestReduceStartClearsPreviousError(t *testing.T) {
	s := ScreenState[store.Note]{Err: "old"}
	s = Reduce(s, MutationStarted{})
	if s.Err != "" {
		t.Fatal("starting a mutation should clear the old error")
	}
}

func TestReduceLoadFailedKeepsItems(t *testing.T) {
	s := ScreenState[store.Note]{Items: []store.Note{{ID: "x"}}}
	s = Reduce(s, LoadFailed{Err: errors.New("disk I/O error")})
	if len(s.Items) != 1 || s.Err != "disk I/O error" {
		t.Fatalf("unexpected state %+v", s)
	}
}

func TestErrorMessageNotFound(t *testing.T) {
	err := fmt.Errorf("update task 1: %w", store.ErrNotFound)
	if got := ErrorMessage(err); got != "Item no longer exists" {
		t.Fatalf("got %q", got)
	}
}

// ==================== Overview ====================

func TestOverview(t *testing.T) {
	s := Overview(sampleTasks(), now)
	want := Summary{Total: 4, Pending: 3, Done: 1, Overdue: 1, DueToday: 2, NoDate: 1}
	if s != want {
		t.Fatalf("got %+v, want %+v", s, want)
	}
}

func TestUpcoming(t *testing.T) {
	tasks := append(sampleTasks(),
		store.Task{ID: "5", DueAt: store.DueMillis(now.Add(24 * time.Hour))},
		store.Task{ID: "6", DueAt: store.DueMillis(now.Add(30 * 24 * time.Hour))},
	)
	days := Upcoming(tasks, now, 7)
	if len(days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(days))
	}
	if days[0].Date != calendar.NewDate(2024, time.March, 14) || days[0].Count != 2 {
		t.Fatalf("today: %+v", days[0])
	}
	if days[1].Count != 1 {
		t.Fatalf("tomorrow: %+v", days[1])
	}
	total := 0
	for _, d := range days {
		total += d.Count
	}
	if total != 3 {
		t.Fatalf("expected 3 pending in window, got %d", total)
	}
}

// ==================== Due dates ====================

func TestParseDue(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		isNil   bool
		wantErr bool
	}{
		{in: "", isNil: true},
		{in: "   ", isNil: true},
		{in: "2026-10-19 14:30", want: time.Date(2026, 10, 19, 14, 30, 0, 0, time.Local)},
		{in: "2026-10-19", want: time.Date(2026, 10, 19, 9, 0, 0, 0, time.Local)},
		{in: "tomorrow", wantErr: true},
		{in: "2026-13-01", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseDue(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidDue) {
				t.Errorf("ParseDue(%q) err = %v, want ErrInvalidDue", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDue(%q): %v", tt.in, err)
			continue
		}
		if tt.isNil {
			if got != nil {
				t.Errorf("ParseDue(%q) = %d, want nil", tt.in, *got)
			}
			continue
		}
		if got == nil || *got != tt.want.UnixMilli() {
			t.Errorf("ParseDue(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseDueKeepsWallClockOnDSTChange(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("no zoneinfo: %v", err)
	}
	prev := time.Local
	time.Local = ny
	t.Cleanup(func() { time.Local = prev })

	// Clocks spring forward at 02:00 on 2026-03-08 and fall back on 2026-11-01.
	for _, day := range []string{"2026-03-08", "2026-11-01"} {
		got, err := ParseDue(day)
		if err != nil {
			t.Fatal(err)
		}
		due := time.UnixMilli(*got).In(ny)
		if due.Hour() != DefaultDueHour || due.Minute() != 0 || due.Format(time.DateOnly) != day {
			t.Errorf("ParseDue(%q) = %s, want %s 09:00", day, due.Format(DueLayout), day)
		}
	}
}
