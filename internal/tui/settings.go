package tui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/orgauns/internal/store"
)

const (
	settingDarkMode        = "dark_mode"
	settingCalendarView    = "calendar_view"
	settingDefaultPriority = "default_priority"
	settingSession         = "session_user"
)

// SyncFunc runs one sync on demand.
type SyncFunc func(ctx context.Context) (*store.SyncRun, error)

type settingsModel struct {
	store  *store.Store
	sync   SyncFunc
	userID string
	email  string
	width  int
	height int

	settings   []store.Setting
	lastSync   *store.SyncRun
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	darkMode        *bool
	calendarView    *string
	defaultPriority *string
}

func newSettingsModel(s *store.Store, sync SyncFunc) settingsModel {
	dark, view, prio := true, "month", "1"
	return settingsModel{
		store:           s,
		sync:            sync,
		darkMode:        &dark,
		calendarView:    &view,
		defaultPriority: &prio,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
	lastSync *store.SyncRun
}

type syncDoneMsg struct {
	run *store.SyncRun
	err error
}

type signOutRequestMsg struct{}

func (s settingsModel) refresh() tea.Cmd {
	st, uid := s.store, s.userID
	return func() tea.Msg {
		settings, _ := st.GetUserSettings(uid)
		msg := settingsDataMsg{}
		for _, kv := range settings {
			if kv.Key != settingSession {
				msg.settings = append(msg.settings, kv)
			}
		}
		if uid != "" {
			msg.lastSync, _ = st.LastSyncRun(uid)
		}
		return msg
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if _, ok := msg.(settingsDataMsg); !ok && s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		s.lastSync = msg.lastSync
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		case key.Matches(msg, keys.Theme):
			dark := !darkTheme
			if err := s.store.SetUserSetting(s.userID, settingDarkMode, strconv.FormatBool(dark)); err != nil {
				return s, statusCmd("Could not save theme: "+err.Error(), true)
			}
			setTheme(dark)
			return s, s.refresh()
		case key.Matches(msg, keys.SyncNow):
			if s.sync == nil {
				return s, nil
			}
			run := s.sync
			return s, func() tea.Msg {
				r, err := run(context.Background())
				return syncDoneMsg{run: r, err: err}
			}
		case key.Matches(msg, keys.SignOut):
			return s, func() tea.Msg { return signOutRequestMsg{} }
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	// Load current values
	*s.darkMode = s.store.GetUserBoolSetting(s.userID, settingDarkMode, true)
	*s.calendarView = s.getVal(settingCalendarView, "month")
	*s.defaultPriority = s.getVal(settingDefaultPriority, "1")

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title("Dark mode").Affirmative("On").Negative("Off").Value(s.darkMode),
			huh.NewSelect[string]().Title("Calendar opens in").
				Options(
					huh.NewOption("Month view", "month"),
					huh.NewOption("Week view", "week"),
				).Value(s.calendarView),
			huh.NewSelect[string]().Title("Default priority for new tasks").
				Options(
					huh.NewOption("Low", "1"),
					huh.NewOption("Medium", "2"),
					huh.NewOption("High", "3"),
				).Value(s.defaultPriority),
		).Title("Preferences"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			return s, statusCmd("Could not save settings: "+err.Error(), true)
		}
		setTheme(*s.darkMode)
		return s, tea.Batch(s.refresh(), statusCmd("Settings saved", false))
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	values := map[string]string{
		settingDarkMode:        strconv.FormatBool(*s.darkMode),
		settingCalendarView:    *s.calendarView,
		settingDefaultPriority: *s.defaultPriority,
	}
	for k, v := range values {
		if err := s.store.SetUserSetting(s.userID, k, v); err != nil {
			return err
		}
	}
	return nil
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetUserSetting(s.userID, k)
	if err != nil {
		return fallback
	}
	return v
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	var rows []string
	rows = append(rows, titleStyle.Render("Settings"), "")

	label := lipgloss.NewStyle().Width(24)
	rows = append(rows, fmt.Sprintf("  %s %s", label.Render("account"), highlightStyle.Render(s.email)))
	for _, setting := range s.settings {
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label.Render(setting.Key), value))
	}

	rows = append(rows, "", titleStyle.Render("Sync"))
	if s.lastSync == nil {
		rows = append(rows, mutedStyle.Render("  Never synced"))
	} else {
		style := successStyle
		if s.lastSync.Status != store.SyncSucceeded {
			style = errorStyle
		}
		rows = append(rows, fmt.Sprintf("  %s %s",
			mutedStyle.Render(s.lastSync.RanAt.Local().Format("2006-01-02 15:04")),
			style.Render(s.lastSync.Message),
		))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: edit  m: dark mode  r: sync now  o: sign out"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case settingDarkMode:
		if b, err := strconv.ParseBool(v); err == nil {
			if b {
				return "on"
			}
			return "off"
		}
	case settingDefaultPriority:
		if p, err := store.ParsePriority(v); err == nil {
			return p.String()
		}
	}
	return v
}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: isError} }
}
