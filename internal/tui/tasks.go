package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/orgauns/internal/agenda"
	"github.com/sadopc/orgauns/internal/store"
)

var priorityOptions = []huh.Option[store.Priority]{
	huh.NewOption("Low", store.PriorityLow),
	huh.NewOption("Medium", store.PriorityMedium),
	huh.NewOption("High", store.PriorityHigh),
}

type tasksModel struct {
	store  *store.Store
	userID string
	width  int
	height int

	state  agenda.ScreenState[store.Task]
	filter agenda.TaskFilter
	cursor int

	searching bool
	search    textinput.Model

	formActive      bool
	form            *huh.Form
	editing         *store.Task // nil while creating
	defaultPriority store.Priority

	// Form field pointers (survive value copies)
	formTitle    *string
	formDesc     *string
	formDue      *string
	formPriority *store.Priority
}

func newTasksModel(s *store.Store) tasksModel {
	title, desc, due := "", "", ""
	prio := store.PriorityLow

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search title or description"
	ti.CharLimit = 80

	return tasksModel{
		store:        s,
		search:       ti,
		formTitle:    &title,
		formDesc:     &desc,
		formDue:      &due,
		formPriority: &prio,
	}
}

func (t *tasksModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

func (t tasksModel) capturing() bool { return t.formActive || t.searching }

func (t tasksModel) visible() []store.Task {
	return t.filter.Apply(t.state.Items)
}

func (t tasksModel) selected() (store.Task, bool) {
	v := t.visible()
	if t.cursor < 0 || t.cursor >= len(v) {
		return store.Task{}, false
	}
	return v[t.cursor], true
}

func (t *tasksModel) clampCursor() {
	t.cursor = clamp(t.cursor, 0, max(0, len(t.visible())-1))
}

func (t tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	// Snapshots and write results must land even while the form is open.
	switch msg.(type) {
	case tasksMsg, mutationMsg, clearErrorMsg:
	default:
		if t.formActive && t.form != nil {
			return t.updateForm(msg)
		}
	}

	switch msg := msg.(type) {
	case tasksMsg:
		t.state = agenda.Reduce(t.state, agenda.Loaded[store.Task]{Items: msg.tasks})
		t.clampCursor()
		return t, nil

	case mutationMsg:
		if msg.err != nil {
			t.state = agenda.Reduce(t.state, agenda.MutationFailed{Err: msg.err})
			return t, clearErrorAfter(viewTasks)
		}
		t.state = agenda.Reduce(t.state, agenda.MutationSucceeded{})
		return t, func() tea.Msg { return statusMsg{text: msg.done} }

	case clearErrorMsg:
		t.state = agenda.Reduce(t.state, agenda.ClearError{})
		return t, nil

	case tea.KeyMsg:
		if t.searching {
			return t.updateSearch(msg)
		}
		return t.updateList(msg)
	}
	return t, nil
}

func (t tasksModel) updateSearch(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		t.searching = false
		t.search.Blur()
		return t, nil
	}
	var cmd tea.Cmd
	t.search, cmd = t.search.Update(msg)
	t.filter.Query = t.search.Value()
	t.clampCursor()
	return t, cmd
}

func (t tasksModel) updateList(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if t.cursor > 0 {
			t.cursor--
		}
	case key.Matches(msg, keys.Down):
		if t.cursor < len(t.visible())-1 {
			t.cursor++
		}
	case key.Matches(msg, keys.New):
		return t.showForm(nil)
	case key.Matches(msg, keys.Edit):
		if task, ok := t.selected(); ok {
			return t.showForm(&task)
		}
	case key.Matches(msg, keys.Toggle):
		if task, ok := t.selected(); ok {
			s, uid := t.store, t.userID
			done := "Task completed"
			if task.Done {
				done = "Task reopened"
			}
			t.state = agenda.Reduce(t.state, agenda.MutationStarted{})
			return t, mutate(viewTasks, done, func() error { return s.ToggleTaskDone(uid, task) })
		}
	case key.Matches(msg, keys.Delete):
		if task, ok := t.selected(); ok {
			s, uid := t.store, t.userID
			t.state = agenda.Reduce(t.state, agenda.MutationStarted{})
			return t, mutate(viewTasks, "Task deleted", func() error { return s.DeleteTask(uid, task.ID) })
		}
	case key.Matches(msg, keys.Search):
		t.searching = true
		return t, t.search.Focus()
	case key.Matches(msg, keys.Status):
		t.filter.Status = t.filter.Status.Next()
		t.clampCursor()
	case key.Matches(msg, keys.Priority):
		t.filter.Priority = (t.filter.Priority + 1) % (store.PriorityHigh + 1)
		t.clampCursor()
	case key.Matches(msg, keys.Clear):
		t.filter = agenda.TaskFilter{}
		t.search.SetValue("")
		t.clampCursor()
	case key.Matches(msg, keys.Back):
		t.state = agenda.Reduce(t.state, agenda.ClearError{})
	}
	return t, nil
}

// showForm opens the create form, or the edit form when task is non-nil.
func (t tasksModel) showForm(task *store.Task) (tasksModel, tea.Cmd) {
	t.editing = task
	if task == nil {
		*t.formTitle = ""
		*t.formDesc = ""
		*t.formDue = ""
		*t.formPriority = store.PriorityLow
		if t.defaultPriority.Valid() {
			*t.formPriority = t.defaultPriority
		}
	} else {
		*t.formTitle = task.Title
		*t.formDesc = task.Description
		*t.formDue = formatDue(*task)
		*t.formPriority = task.Priority
	}

	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(t.formTitle).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title is required")
					}
					return nil
				}),
			huh.NewText().Title("Description").Lines(3).Value(t.formDesc),
			huh.NewInput().Title("Due (YYYY-MM-DD HH:MM, empty for none)").Value(t.formDue).Validate(validateDue),
			huh.NewSelect[store.Priority]().Title("Priority").Options(priorityOptions...).Value(t.formPriority),
		),
	).WithShowHelp(true).WithShowErrors(true)

	t.formActive = true
	return t, t.form.Init()
}

func (t tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			t.formActive = false
			t.form = nil
			return t, nil
		}
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}

	if t.form.State == huh.StateCompleted {
		return t.submitForm()
	}
	return t, cmd
}

func (t tasksModel) submitForm() (tasksModel, tea.Cmd) {
	t.formActive = false
	t.form = nil

	due, err := agenda.ParseDue(*t.formDue)
	if err != nil {
		t.state = agenda.Reduce(t.state, agenda.MutationFailed{Err: err})
		return t, clearErrorAfter(viewTasks)
	}

	var task store.Task
	if t.editing != nil {
		task = *t.editing
	}
	task.Title = strings.TrimSpace(*t.formTitle)
	task.Description = strings.TrimSpace(*t.formDesc)
	task.DueAt = due
	task.Priority = *t.formPriority

	s, uid := t.store, t.userID
	t.state = agenda.Reduce(t.state, agenda.MutationStarted{})
	if t.editing == nil {
		return t, mutate(viewTasks, "Task created", func() error {
			_, err := s.CreateTask(uid, task)
			return err
		})
	}
	return t, mutate(viewTasks, "Task updated", func() error { return s.UpdateTask(uid, task) })
}

func (t tasksModel) view() string {
	w := t.width - 4

	if t.formActive && t.form != nil {
		title := titleStyle.Render("New Task")
		if t.editing != nil {
			title = titleStyle.Render("Edit Task")
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", t.form.View()),
		)
	}

	tasks := t.visible()
	title := titleStyle.Render("Tasks") + mutedStyle.Render(fmt.Sprintf("  %d of %d", len(tasks), len(t.state.Items)))

	var rows []string
	rows = append(rows, title, t.renderFilters())
	if t.state.Err != "" {
		rows = append(rows, errorStyle.Render("  ✗ "+t.state.Err))
	} else if t.state.Loading {
		rows = append(rows, mutedStyle.Render("  saving..."))
	}
	rows = append(rows, "")

	switch {
	case len(t.state.Items) == 0:
		rows = append(rows, mutedStyle.Render("No tasks yet. Press n to create one."))
	case len(tasks) == 0:
		rows = append(rows, mutedStyle.Render("No tasks match the filters. Press c to clear them."))
	default:
		rows = append(rows, t.renderRows(tasks, w)...)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  enter: edit  space: done  d: delete  /: search  s: status  p: priority  c: clear"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (t tasksModel) renderFilters() string {
	search := mutedStyle.Render("/ search")
	if t.searching {
		search = t.search.View()
	} else if t.filter.Query != "" {
		search = highlightStyle.Render("/ " + t.filter.Query)
	}
	prio := "any"
	if t.filter.Priority != 0 {
		prio = t.filter.Priority.String()
	}
	return fmt.Sprintf("  %s   %s %s   %s %s",
		search,
		mutedStyle.Render("status:"), highlightStyle.Render(t.filter.Status.String()),
		mutedStyle.Render("priority:"), highlightStyle.Render(prio),
	)
}

func (t tasksModel) renderRows(tasks []store.Task, w int) []string {
	// Keep the cursor inside the visible window.
	window := max(3, t.height-12)
	start := 0
	if t.cursor >= window {
		start = t.cursor - window + 1
	}
	end := min(len(tasks), start+window)

	var rows []string
	for i := start; i < end; i++ {
		task := tasks[i]
		cursor := "  "
		style := normalItemStyle
		if i == t.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		check := "[ ]"
		if task.Done {
			check = successStyle.Render("[✓]")
			if i != t.cursor {
				style = mutedStyle
			}
		}
		prio := priorityStyle(task.Priority).Render(fmt.Sprintf("%-6s", task.Priority))
		due := mutedStyle.Render(formatDue(task))
		name := truncate(task.Title, max(10, w-46))
		rows = append(rows, fmt.Sprintf("%s%s %s %s %s", cursor, check, prio, style.Render(fmt.Sprintf("%-*s", max(10, w-46), name)), due))
	}
	if end < len(tasks) {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  … %d more", len(tasks)-end)))
	}
	return rows
}
