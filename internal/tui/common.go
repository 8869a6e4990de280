package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/orgauns/internal/agenda"
	"github.com/sadopc/orgauns/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewOverview viewState = iota
	viewTasks
	viewNotes
	viewCalendar
	viewSettings
)

var viewNames = []string{"Overview", "Tasks", "Notes", "Calendar", "Settings"}

// statusTimeout is how long a status or error line stays before it clears.
const statusTimeout = 5 * time.Second

// --- Messages ---

// Snapshots carry the subscription generation so that values from a
// previous user's subscription are dropped.
type tasksMsg struct {
	gen   int
	tasks []store.Task
}

type notesMsg struct {
	gen   int
	notes []store.Note
}

type userMsg struct {
	user *store.User
}

type statusMsg struct {
	text    string
	isError bool
}

type clearStatusMsg struct {
	id int
}

// mutationMsg reports the outcome of a store write started by a view.
type mutationMsg struct {
	view viewState
	done string
	err  error
}

type clearErrorMsg struct {
	view viewState
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// NotificationMsg shows a background job notification in the status line.
// Send it with tea.Program.Send.
type NotificationMsg struct {
	Title string
	Body  string
}

// --- Commands ---

func waitForTasks(gen int, ch <-chan []store.Task) tea.Cmd {
	return func() tea.Msg {
		tasks, ok := <-ch
		if !ok {
			return nil
		}
		return tasksMsg{gen: gen, tasks: tasks}
	}
}

func waitForNotes(gen int, ch <-chan []store.Note) tea.Cmd {
	return func() tea.Msg {
		notes, ok := <-ch
		if !ok {
			return nil
		}
		return notesMsg{gen: gen, notes: notes}
	}
}

func waitForUser(ch <-chan *store.User) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return nil
		}
		return userMsg{user: u}
	}
}

// mutate runs fn off the update loop and reports back to view.
func mutate(view viewState, done string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return mutationMsg{view: view, done: done, err: fn()}
	}
}

func clearErrorAfter(view viewState) tea.Cmd {
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg {
		return clearErrorMsg{view: view}
	})
}

// --- Helpers ---

func validateDue(s string) error {
	_, err := agenda.ParseDue(s)
	return err
}

func formatDue(t store.Task) string {
	due, ok := t.Due()
	if !ok {
		return ""
	}
	return due.Local().Format(agenda.DueLayout)
}

func truncate(s string, n int) string {
	if n <= 1 || len([]rune(s)) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
