package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/orgauns/internal/agenda"
	"github.com/sadopc/orgauns/internal/store"
)

// upcomingDays is the span of the overview chart.
const upcomingDays = 7

type overviewModel struct {
	width  int
	height int
	now    func() time.Time

	email   string
	tasks   []store.Task
	summary agenda.Summary

	chart barchart.Model
}

func newOverviewModel(now func() time.Time) overviewModel {
	return overviewModel{
		now:   now,
		chart: barchart.New(60, 10),
	}
}

func (o *overviewModel) setSize(w, h int) {
	o.width = w
	o.height = h
	o.buildChart()
}

func (o *overviewModel) setTasks(tasks []store.Task) {
	o.tasks = tasks
	o.refresh()
}

// refresh recomputes everything that depends on the current time.
func (o *overviewModel) refresh() {
	o.summary = agenda.Overview(o.tasks, o.now())
	o.buildChart()
}

func (o *overviewModel) buildChart() {
	chartWidth := o.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 8
	if o.height > 30 {
		chartHeight = 12
	}

	o.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for i, d := range agenda.Upcoming(o.tasks, o.now(), upcomingDays) {
		label := d.Date.In(time.Local).Format("Mon 02")
		style := lipgloss.NewStyle().Foreground(colorPrimary)
		if i == 0 {
			style = lipgloss.NewStyle().Foreground(colorAccent)
		}
		if d.Count == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label:  label,
			Values: []barchart.BarValue{{Name: "due", Value: float64(d.Count), Style: style}},
		})
	}

	o.chart.PushAll(bars)
	o.chart.Draw()
}

func (o overviewModel) view() string {
	if o.width < 20 {
		return "Terminal too small"
	}
	w := o.width - 4

	return lipgloss.JoinVertical(lipgloss.Left,
		o.renderSummaryPanel(w),
		o.renderChartPanel(w),
		o.renderUpcomingPanel(w),
	)
}

func (o overviewModel) renderSummaryPanel(w int) string {
	title := titleStyle.Render("Today")
	if o.email != "" {
		title += mutedStyle.Render("  " + o.email)
	}
	s := o.summary
	counts := fmt.Sprintf("  %s pending   %s done   %s due today   %s overdue   %s undated",
		highlightStyle.Render(fmt.Sprint(s.Pending)),
		successStyle.Render(fmt.Sprint(s.Done)),
		warningStyle.Render(fmt.Sprint(s.DueToday)),
		errorStyle.Render(fmt.Sprint(s.Overdue)),
		mutedStyle.Render(fmt.Sprint(s.NoDate)),
	)
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, counts))
}

func (o overviewModel) renderChartPanel(w int) string {
	title := titleStyle.Render("Due in the next 7 days")
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", o.chart.View()))
}

func (o overviewModel) renderUpcomingPanel(w int) string {
	title := titleStyle.Render("Coming up")
	upcoming := o.upcoming(5)
	if len(upcoming) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, mutedStyle.Render("Nothing scheduled"),
		))
	}

	now := o.now()
	rows := []string{title}
	for _, t := range upcoming {
		due, _ := t.Due()
		when := due.Local().Format("Mon 02 15:04")
		style := normalItemStyle
		if due.Before(now) {
			style = errorStyle
		}
		rows = append(rows, fmt.Sprintf("  %s  %s", mutedStyle.Render(when), style.Render(t.Title)))
	}
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// upcoming returns up to n pending dated tasks, earliest due first.
func (o overviewModel) upcoming(n int) []store.Task {
	var out []store.Task
	for _, t := range o.tasks {
		if !t.Done && t.DueAt != nil {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return *out[i].DueAt < *out[j].DueAt })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
