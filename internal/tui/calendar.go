package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/orgauns/internal/calendar"
	"github.com/sadopc/orgauns/internal/store"
)

type calendarModel struct {
	width  int
	height int
	now    func() time.Time

	cursor calendar.Cursor
	tasks  []store.Task
}

func newCalendarModel(now func() time.Time) calendarModel {
	return calendarModel{now: now, cursor: calendar.NewCursor(now)}
}

func (c *calendarModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

func (c calendarModel) update(msg tea.Msg) (calendarModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tasksMsg:
		c.tasks = msg.tasks
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			c.move(-1)
		case key.Matches(msg, keys.Right):
			c.move(1)
		case key.Matches(msg, keys.Up):
			c.move(-7)
		case key.Matches(msg, keys.Down):
			c.move(7)
		case key.Matches(msg, keys.PrevMon):
			c.cursor = c.cursor.PreviousMonth()
		case key.Matches(msg, keys.NextMon):
			c.cursor = c.cursor.NextMonth()
		case key.Matches(msg, keys.Today):
			c.cursor = c.cursor.SelectToday()
		case key.Matches(msg, keys.WeekView):
			c.cursor = c.cursor.ToggleView()
		}
	}
	return c, nil
}

// move shifts the selection by n days. Leaving the visible month pages the
// grid along with it.
func (c *calendarModel) move(n int) {
	c.cursor = c.cursor.SelectDate(c.cursor.Selected.AddDays(n))
	for c.cursor.Selected.Before(c.cursor.Visible.FirstDay()) {
		c.cursor = c.cursor.PreviousMonth()
	}
	for c.cursor.Selected.After(c.cursor.Visible.LastDay()) {
		c.cursor = c.cursor.NextMonth()
	}
}

func (c calendarModel) view() string {
	w := c.width - 4

	mode := "month"
	heading := c.cursor.Visible.Title()
	if c.cursor.WeekView {
		mode = "week"
		days := c.cursor.Grid()
		heading = fmt.Sprintf("Week of %s", days[0].Date)
	}
	title := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render(heading), "  ", mutedStyle.Render("("+mode+" view)"),
	)

	grid := c.renderGrid()
	dayList := c.renderDayList(w)

	nav := mutedStyle.Render("  ←/→/↑/↓: move  [/]: month  t: today  w: month/week")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, title, "", grid, "", dayList, "", nav),
	)
}

func (c calendarModel) renderGrid() string {
	busy := calendar.DatesWithTasks(c.tasks, c.cursor.Visible)
	if c.cursor.WeekView {
		// The week may span two months.
		for _, d := range c.cursor.Grid() {
			if len(calendar.TasksOnDate(c.tasks, d.Date)) > 0 {
				busy[d.Date] = struct{}{}
			}
		}
	}
	today := calendar.DateOf(c.now())

	var header []string
	for _, h := range calendar.WeekdayHeaders() {
		header = append(header, mutedStyle.Width(5).Align(lipgloss.Center).Render(h))
	}

	rows := []string{lipgloss.JoinHorizontal(lipgloss.Top, header...)}
	for _, week := range calendar.Weeks(c.cursor.Grid()) {
		var cells []string
		for _, d := range week {
			cells = append(cells, renderDay(d, d.Date == c.cursor.Selected, d.Date == today, hasKey(busy, d.Date)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(rows, "\n")
}

func renderDay(d calendar.Day, selected, today, busy bool) string {
	style := dayStyle
	switch {
	case selected:
		style = selectedDayStyle
	case today:
		style = todayStyle
	case !d.IsCurrentMonth:
		style = otherMonthStyle
	}
	label := fmt.Sprintf("%2d", d.Date.Day)
	if busy {
		label += "•"
	} else {
		label += " "
	}
	return style.Render(label)
}

func hasKey(set map[calendar.Date]struct{}, d calendar.Date) bool {
	_, ok := set[d]
	return ok
}

func (c calendarModel) renderDayList(w int) string {
	sel := c.cursor.Selected
	tasks := calendar.TasksOnDate(c.tasks, sel)

	title := titleStyle.Render(sel.In(time.Local).Format("Monday, January 2"))
	if len(tasks) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render("  No tasks for this day"))
	}

	rows := []string{title}
	for _, t := range tasks {
		due, _ := t.Due()
		check := "○"
		style := normalItemStyle
		if t.Done {
			check = successStyle.Render("✓")
			style = mutedStyle
		}
		rows = append(rows, fmt.Sprintf("  %s %s %s %s",
			check,
			mutedStyle.Render(due.Local().Format("15:04")),
			style.Render(truncate(t.Title, max(10, w-24))),
			priorityStyle(t.Priority).Render(t.Priority.String()),
		))
	}
	return strings.Join(rows, "\n")
}
