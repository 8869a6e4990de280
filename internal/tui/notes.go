package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/orgauns/internal/agenda"
	"github.com/sadopc/orgauns/internal/store"
)

type notesModel struct {
	store  *store.Store
	userID string
	width  int
	height int

	state  agenda.ScreenState[store.Note]
	cursor int

	formActive bool
	form       *huh.Form
	editing    *store.Note

	formTitle *string
	formBody  *string
}

func newNotesModel(s *store.Store) notesModel {
	title, body := "", ""
	return notesModel{
		store:     s,
		formTitle: &title,
		formBody:  &body,
	}
}

func (n *notesModel) setSize(w, h int) {
	n.width = w
	n.height = h
}

func (n notesModel) selected() (store.Note, bool) {
	if n.cursor < 0 || n.cursor >= len(n.state.Items) {
		return store.Note{}, false
	}
	return n.state.Items[n.cursor], true
}

func (n notesModel) update(msg tea.Msg) (notesModel, tea.Cmd) {
	switch msg.(type) {
	case notesMsg, mutationMsg, clearErrorMsg:
	default:
		if n.formActive && n.form != nil {
			return n.updateForm(msg)
		}
	}

	switch msg := msg.(type) {
	case notesMsg:
		n.state = agenda.Reduce(n.state, agenda.Loaded[store.Note]{Items: agenda.SortNotes(msg.notes)})
		n.cursor = clamp(n.cursor, 0, max(0, len(n.state.Items)-1))
		return n, nil

	case mutationMsg:
		if msg.err != nil {
			n.state = agenda.Reduce(n.state, agenda.MutationFailed{Err: msg.err})
			return n, clearErrorAfter(viewNotes)
		}
		n.state = agenda.Reduce(n.state, agenda.MutationSucceeded{})
		return n, func() tea.Msg { return statusMsg{text: msg.done} }

	case clearErrorMsg:
		n.state = agenda.Reduce(n.state, agenda.ClearError{})
		return n, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if n.cursor > 0 {
				n.cursor--
			}
		case key.Matches(msg, keys.Down):
			if n.cursor < len(n.state.Items)-1 {
				n.cursor++
			}
		case key.Matches(msg, keys.New):
			return n.showForm(nil)
		case key.Matches(msg, keys.Edit):
			if note, ok := n.selected(); ok {
				return n.showForm(&note)
			}
		case key.Matches(msg, keys.Delete):
			if note, ok := n.selected(); ok {
				s, uid := n.store, n.userID
				n.state = agenda.Reduce(n.state, agenda.MutationStarted{})
				return n, mutate(viewNotes, "Note deleted", func() error { return s.DeleteNote(uid, note.ID) })
			}
		case key.Matches(msg, keys.Back):
			n.state = agenda.Reduce(n.state, agenda.ClearError{})
		}
	}
	return n, nil
}

func (n notesModel) showForm(note *store.Note) (notesModel, tea.Cmd) {
	n.editing = note
	*n.formTitle, *n.formBody = "", ""
	if note != nil {
		*n.formTitle, *n.formBody = note.Title, note.Body
	}

	n.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(n.formTitle).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title is required")
					}
					return nil
				}),
			huh.NewText().Title("Content").Lines(8).Value(n.formBody),
		),
	).WithShowHelp(true).WithShowErrors(true)

	n.formActive = true
	return n, n.form.Init()
}

func (n notesModel) updateForm(msg tea.Msg) (notesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			n.formActive = false
			n.form = nil
			return n, nil
		}
	}

	form, cmd := n.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		n.form = f
	}

	if n.form.State == huh.StateCompleted {
		n.formActive = false
		n.form = nil

		var note store.Note
		if n.editing != nil {
			note = *n.editing
		}
		note.Title = strings.TrimSpace(*n.formTitle)
		note.Body = *n.formBody

		s, uid := n.store, n.userID
		n.state = agenda.Reduce(n.state, agenda.MutationStarted{})
		if n.editing == nil {
			return n, mutate(viewNotes, "Note created", func() error {
				_, err := s.CreateNote(uid, note)
				return err
			})
		}
		return n, mutate(viewNotes, "Note updated", func() error { return s.UpdateNote(uid, note) })
	}
	return n, cmd
}

func (n notesModel) view() string {
	w := n.width - 4

	if n.formActive && n.form != nil {
		title := titleStyle.Render("New Note")
		if n.editing != nil {
			title = titleStyle.Render("Edit Note")
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", n.form.View()),
		)
	}

	var rows []string
	rows = append(rows, titleStyle.Render("Notes"))
	if n.state.Err != "" {
		rows = append(rows, errorStyle.Render("  ✗ "+n.state.Err))
	}
	rows = append(rows, "")

	if len(n.state.Items) == 0 {
		rows = append(rows, mutedStyle.Render("No notes yet. Press n to write one."))
	}
	for i, note := range n.state.Items {
		cursor := "  "
		style := normalItemStyle
		if i == n.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		updated := mutedStyle.Render(note.UpdatedAt.Local().Format("Jan 02 15:04"))
		rows = append(rows, fmt.Sprintf("%s%s  %s", cursor, style.Render(truncate(note.Title, max(10, w-24))), updated))
	}

	// Preview of the selected note.
	if note, ok := n.selected(); ok && note.Body != "" {
		rows = append(rows, "", mutedStyle.Render(strings.Repeat("─", max(1, min(w-6, 60)))))
		rows = append(rows, lipgloss.NewStyle().Width(max(10, w-6)).Render(note.Body))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  enter: edit  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
