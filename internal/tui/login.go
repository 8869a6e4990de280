package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/orgauns/internal/auth"
)

const (
	modeSignIn   = "signin"
	modeRegister = "register"
)

// loginModel is shown while nobody is signed in.
type loginModel struct {
	auth   *auth.Service
	width  int
	height int

	form    *huh.Form
	busy    bool
	errText string

	mode     *string
	email    *string
	password *string
}

type loginResultMsg struct {
	err error
}

func newLoginModel(a *auth.Service) loginModel {
	mode, email, password := modeSignIn, "", ""
	return loginModel{
		auth:     a,
		mode:     &mode,
		email:    &email,
		password: &password,
	}
}

func (l *loginModel) setSize(w, h int) {
	l.width = w
	l.height = h
}

// reset builds a fresh form, keeping the email typed so far.
func (l loginModel) reset() (loginModel, tea.Cmd) {
	*l.password = ""
	l.busy = false
	l.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Welcome to OrgaUNS").
				Options(
					huh.NewOption("Sign in", modeSignIn),
					huh.NewOption("Create an account", modeRegister),
				).Value(l.mode),
			huh.NewInput().Title("Email").Placeholder("you@example.com").Value(l.email).
				Validate(func(s string) error {
					if !strings.Contains(s, "@") {
						return auth.ErrInvalidEmail
					}
					return nil
				}),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(l.password),
		),
	).WithShowHelp(true).WithShowErrors(true)
	return l, l.form.Init()
}

func (l loginModel) submit() tea.Cmd {
	a := l.auth
	mode, email, password := *l.mode, *l.email, *l.password
	return func() tea.Msg {
		var err error
		if mode == modeRegister {
			_, err = a.SignUp(context.Background(), email, password)
		} else {
			_, err = a.SignIn(context.Background(), email, password)
		}
		return loginResultMsg{err: err}
	}
}

func (l loginModel) update(msg tea.Msg) (loginModel, tea.Cmd) {
	if res, ok := msg.(loginResultMsg); ok {
		if res.err == nil {
			// The auth subscription switches the app to the main views.
			l.busy = false
			l.errText = ""
			return l, nil
		}
		l.errText = auth.Message(res.err)
		return l.reset()
	}

	if l.form == nil || l.busy {
		return l, nil
	}

	form, cmd := l.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		l.form = f
	}
	if l.form.State == huh.StateCompleted {
		l.busy = true
		return l, l.submit()
	}
	return l, cmd
}

func (l loginModel) view() string {
	w := min(l.width-4, 70)

	var body string
	switch {
	case l.busy:
		body = mutedStyle.Render("Checking credentials...")
	case l.form != nil:
		body = l.form.View()
	}

	rows := []string{titleStyle.Render("OrgaUNS"), subtitleStyle.Render("Simple agenda"), "", body}
	if l.errText != "" {
		rows = append(rows, "", errorStyle.Render("✗ "+l.errText))
	}
	panel := activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return lipgloss.Place(l.width, l.height, lipgloss.Center, lipgloss.Center, panel)
}
