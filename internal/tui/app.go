package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"

	"github.com/sadopc/orgauns/internal/agenda"
	"github.com/sadopc/orgauns/internal/auth"
	"github.com/sadopc/orgauns/internal/export"
	"github.com/sadopc/orgauns/internal/logging"
	"github.com/sadopc/orgauns/internal/store"
)

// Deps are the services the TUI runs against.
type Deps struct {
	Store *store.Store
	Auth  *auth.Service
	Log   *logrus.Entry
	// Now defaults to time.Now.
	Now func() time.Time
	// Sync runs a sync from the settings screen. Optional.
	Sync SyncFunc
	// ExportDir receives exported files. Defaults to the home directory.
	ExportDir string
}

// App is the root Bubble Tea model.
type App struct {
	ctx    context.Context
	store  *store.Store
	auth   *auth.Service
	log    *logrus.Entry
	width  int
	height int

	exportDir string

	userCh  <-chan *store.User
	user    *store.User
	gen     int
	stop    context.CancelFunc
	tasksCh <-chan []store.Task
	notesCh <-chan []store.Note

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	login    loginModel
	overview overviewModel
	tasks    tasksModel
	notes    notesModel
	calendar calendarModel
	settings settingsModel

	help      help.Model
	status    string
	statusErr bool
	statusID  int
}

// NewApp builds the root model. The auth subscription lives until ctx ends.
func NewApp(ctx context.Context, d Deps) App {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	h := help.New()
	h.ShowAll = false

	setTheme(d.Store.GetBoolSetting(settingDarkMode, true))

	a := App{
		ctx:        ctx,
		store:      d.Store,
		auth:       d.Auth,
		log:        logging.Component(d.Log, "tui"),
		exportDir:  d.ExportDir,
		userCh:     d.Auth.Subscribe(ctx),
		activeView: viewOverview,
		login:      newLoginModel(d.Auth),
		overview:   newOverviewModel(now),
		tasks:      newTasksModel(d.Store),
		notes:      newNotesModel(d.Store),
		calendar:   newCalendarModel(now),
		settings:   newSettingsModel(d.Store, d.Sync),
		help:       h,
	}
	a.login, _ = a.login.reset()
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		waitForUser(a.userCh),
		a.login.form.Init(),
		tickCmd(),
	)
}

// tickCmd refreshes time-relative counts such as "overdue".
func tickCmd() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) signedIn() bool { return a.user != nil }

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.login.setSize(a.width, a.height)
		a.overview.setSize(a.width, contentHeight)
		a.tasks.setSize(a.width, contentHeight)
		a.notes.setSize(a.width, contentHeight)
		a.calendar.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case userMsg:
		return a.switchUser(msg.user)

	case tasksMsg:
		if msg.gen != a.gen {
			return a, nil
		}
		var cmd tea.Cmd
		a.tasks, cmd = a.tasks.update(msg)
		a.calendar, _ = a.calendar.update(msg)
		a.overview.setTasks(msg.tasks)
		return a, tea.Batch(cmd, waitForTasks(a.gen, a.tasksCh))

	case notesMsg:
		if msg.gen != a.gen {
			return a, nil
		}
		var cmd tea.Cmd
		a.notes, cmd = a.notes.update(msg)
		return a, tea.Batch(cmd, waitForNotes(a.gen, a.notesCh))

	case mutationMsg:
		return a.updateView(msg.view, msg)

	case clearErrorMsg:
		return a.updateView(msg.view, msg)

	case loginResultMsg:
		var cmd tea.Cmd
		a.login, cmd = a.login.update(msg)
		if msg.err != nil {
			a.log.WithError(msg.err).Debug("sign in failed")
		}
		return a, cmd

	case settingsDataMsg:
		a.applyDefaultPriority(msg.settings)
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, cmd

	case syncDoneMsg:
		text, isErr := "Sync finished", msg.err != nil
		switch {
		case msg.run != nil:
			text = msg.run.Message
		case msg.err != nil:
			text = agenda.ErrorMessage(msg.err)
		}
		return a, tea.Batch(a.setStatus(text, isErr), a.settings.refresh())

	case signOutRequestMsg:
		svc := a.auth
		return a, func() tea.Msg {
			if err := svc.SignOut(); err != nil {
				return statusMsg{text: auth.Message(err), isError: true}
			}
			return statusMsg{text: "Signed out"}
		}

	case statusMsg:
		return a, a.setStatus(msg.text, msg.isError)

	case clearStatusMsg:
		if msg.id == a.statusID {
			a.status = ""
			a.statusErr = false
		}
		return a, nil

	case NotificationMsg:
		return a, a.setStatus(msg.Title+": "+msg.Body, false)

	case exportDoneMsg:
		return a, a.setStatus("Exported to "+msg.path, false)

	case tickMsg:
		a.overview.refresh()
		return a, tickCmd()

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) && msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if !a.signedIn() {
			var cmd tea.Cmd
			a.login, cmd = a.login.update(msg)
			return a, cmd
		}
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// A child capturing input (form, search box) gets every key.
		if a.isFormActive() {
			return a.updateView(a.activeView, msg)
		}

		switch {
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchView(viewOverview)
		case key.Matches(msg, keys.Tab2):
			return a.switchView(viewTasks)
		case key.Matches(msg, keys.Tab3):
			return a.switchView(viewNotes)
		case key.Matches(msg, keys.Tab4):
			return a.switchView(viewCalendar)
		case key.Matches(msg, keys.Tab5):
			return a.switchView(viewSettings)
		case key.Matches(msg, keys.Tab):
			return a.switchView((a.activeView + 1) % viewState(len(viewNames)))
		}
	}

	if !a.signedIn() {
		var cmd tea.Cmd
		a.login, cmd = a.login.update(msg)
		return a, cmd
	}
	return a.updateView(a.activeView, msg)
}

// switchUser tears down the previous user's subscriptions and opens new ones.
func (a App) switchUser(u *store.User) (tea.Model, tea.Cmd) {
	if a.stop != nil {
		a.stop()
		a.stop = nil
	}
	a.gen++
	a.tasksCh, a.notesCh = nil, nil
	a.user = u
	cmds := []tea.Cmd{waitForUser(a.userCh)}

	if u == nil {
		a.setUser("", "")
		a.tasks.state = agenda.ScreenState[store.Task]{}
		a.notes.state = agenda.ScreenState[store.Note]{}
		a.calendar.tasks = nil
		a.overview.setTasks(nil)
		a.activeView = viewOverview
		setTheme(a.store.GetBoolSetting(settingDarkMode, true))
		var cmd tea.Cmd
		a.login, cmd = a.login.reset()
		return a, tea.Batch(append(cmds, cmd)...)
	}

	ctx, cancel := context.WithCancel(a.ctx)
	tasksCh, err := a.store.SubscribeTasks(ctx, u.ID)
	if err != nil {
		cancel()
		return a, tea.Batch(append(cmds, a.setStatus(agenda.ErrorMessage(err), true))...)
	}
	notesCh, err := a.store.SubscribeNotes(ctx, u.ID)
	if err != nil {
		cancel()
		return a, tea.Batch(append(cmds, a.setStatus(agenda.ErrorMessage(err), true))...)
	}
	a.stop = cancel
	a.tasksCh, a.notesCh = tasksCh, notesCh
	a.log.WithField("user", u.ID).Debug("subscribed")

	a.setUser(u.ID, u.Email)
	a.tasks.defaultPriority = store.PriorityLow
	a.tasks.state.Loading = true
	a.notes.state.Loading = true
	setTheme(a.store.GetUserBoolSetting(u.ID, settingDarkMode, true))
	if v, err := a.store.GetUserSetting(u.ID, settingCalendarView); err == nil {
		if (v == "week") != a.calendar.cursor.WeekView {
			a.calendar.cursor = a.calendar.cursor.ToggleView()
		}
	}
	a.activeView = viewOverview

	cmds = append(cmds,
		waitForTasks(a.gen, tasksCh),
		waitForNotes(a.gen, notesCh),
		a.settings.refresh(),
	)
	return a, tea.Batch(cmds...)
}

func (a *App) setUser(id, email string) {
	a.tasks.userID = id
	a.notes.userID = id
	a.settings.userID = id
	a.settings.email = email
	a.overview.email = email
}

func (a *App) applyDefaultPriority(settings []store.Setting) {
	for _, kv := range settings {
		if kv.Key != settingDefaultPriority {
			continue
		}
		if p, err := store.ParsePriority(kv.Value); err == nil {
			a.tasks.defaultPriority = p
		}
	}
}

func (a *App) setStatus(text string, isError bool) tea.Cmd {
	a.statusID++
	a.status = text
	a.statusErr = isError
	id := a.statusID
	return tea.Tick(statusTimeout, func(time.Time) tea.Msg { return clearStatusMsg{id: id} })
}

func (a App) switchView(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	switch v {
	case viewOverview:
		a.overview.refresh()
	case viewSettings:
		return a, a.settings.refresh()
	}
	return a, nil
}

func (a App) updateView(v viewState, msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch v {
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewNotes:
		a.notes, cmd = a.notes.update(msg)
	case viewCalendar:
		a.calendar, cmd = a.calendar.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTasks:
		return a.tasks.capturing()
	case viewNotes:
		return a.notes.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}
	if !a.signedIn() {
		return a.login.view()
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewOverview:
		content = a.overview.view()
	case viewTasks:
		content = a.tasks.view()
	case viewNotes:
		content = a.notes.view()
	case viewCalendar:
		content = a.calendar.view()
	case viewSettings:
		content = a.settings.view()
	}

	contentHeight := max(1, a.height-lipgloss.Height(header)-lipgloss.Height(footer))

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("orgauns")
	gap := max(1, a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	left := footerStyle.Render(a.help.View(keys))

	right := ""
	if a.status != "" {
		if a.statusErr {
			right = errorStyle.Render(" ✗ " + a.status)
		} else {
			right = mutedStyle.Render(" " + a.status)
		}
	}

	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

// --- Export ---

type exportOption struct {
	label  string
	kind   string
	format string
}

var exportOptions = []exportOption{
	{"Tasks as CSV", "tasks", export.FormatCSV},
	{"Tasks as JSON", "tasks", export.FormatJSON},
	{"Tasks as iCalendar", "tasks", export.FormatICS},
	{"Notes as JSON", "notes", export.FormatJSON},
}

func (a App) renderExportPicker() string {
	rows := []string{titleStyle.Render("Export"), ""}
	for i, opt := range exportOptions {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+opt.label))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportOptions)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(exportOptions[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(opt exportOption) tea.Cmd {
	s, uid, dir := a.store, a.tasks.userID, a.exportDir
	return func() tea.Msg {
		if dir == "" {
			home, err := homedir.Dir()
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
			}
			dir = home
		}
		path := filepath.Join(dir, fmt.Sprintf("orgauns-%s-%s.%s", opt.kind, time.Now().Format(time.DateOnly), opt.format))

		if err := exportTo(s, uid, opt, path); err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		return exportDoneMsg{path: path}
	}
}

func exportTo(s *store.Store, userID string, opt exportOption, path string) error {
	if opt.kind == "notes" {
		notes, err := s.ListNotes(userID)
		if err != nil {
			return err
		}
		return export.NotesToJSON(agenda.SortNotes(notes), path)
	}

	tasks, err := s.ListTasks(userID)
	if err != nil {
		return err
	}
	switch opt.format {
	case export.FormatCSV:
		return export.TasksToCSV(tasks, path)
	case export.FormatICS:
		return export.TasksToICS(tasks, path)
	default:
		return export.TasksToJSON(tasks, path)
	}
}
