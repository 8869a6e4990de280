package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/orgauns/internal/store"
)

type palette struct {
	primary, secondary, accent, muted lipgloss.Color
	success, warning, err             lipgloss.Color
	fg, subtle, highlight             lipgloss.Color
}

var darkPalette = palette{
	primary:   "#6C63FF",
	secondary: "#2EC4B6",
	accent:    "#FF6B6B",
	muted:     "#666666",
	success:   "#2ECC71",
	warning:   "#F39C12",
	err:       "#E74C3C",
	fg:        "#C0CAF5",
	subtle:    "#414868",
	highlight: "#7AA2F7",
}

var lightPalette = palette{
	primary:   "#4B3FD9",
	secondary: "#13867A",
	accent:    "#C0392B",
	muted:     "#8A8A8A",
	success:   "#1E8449",
	warning:   "#B9770E",
	err:       "#C0392B",
	fg:        "#24283B",
	subtle:    "#C8CCE0",
	highlight: "#2E5CB8",
}

// Color palette
var (
	colorPrimary   lipgloss.Color
	colorSecondary lipgloss.Color
	colorAccent    lipgloss.Color
	colorMuted     lipgloss.Color
	colorSuccess   lipgloss.Color
	colorWarning   lipgloss.Color
	colorError     lipgloss.Color
	colorFg        lipgloss.Color
	colorSubtle    lipgloss.Color
	colorHighlight lipgloss.Color
)

// Styles
var (
	activeTabStyle    lipgloss.Style
	inactiveTabStyle  lipgloss.Style
	panelStyle        lipgloss.Style
	activePanelStyle  lipgloss.Style
	titleStyle        lipgloss.Style
	subtitleStyle     lipgloss.Style
	accentStyle       lipgloss.Style
	successStyle      lipgloss.Style
	warningStyle      lipgloss.Style
	errorStyle        lipgloss.Style
	mutedStyle        lipgloss.Style
	highlightStyle    lipgloss.Style
	headerStyle       lipgloss.Style
	footerStyle       lipgloss.Style
	selectedItemStyle lipgloss.Style
	normalItemStyle   lipgloss.Style

	// Calendar cells
	dayStyle         lipgloss.Style
	otherMonthStyle  lipgloss.Style
	selectedDayStyle lipgloss.Style
	todayStyle       lipgloss.Style
	taskDotStyle     lipgloss.Style
)

var darkTheme = true

func init() { setTheme(true) }

// setTheme rebuilds every style from the dark or light palette.
func setTheme(dark bool) {
	darkTheme = dark
	p := lightPalette
	if dark {
		p = darkPalette
	}

	colorPrimary = p.primary
	colorSecondary = p.secondary
	colorAccent = p.accent
	colorMuted = p.muted
	colorSuccess = p.success
	colorWarning = p.warning
	colorError = p.err
	colorFg = p.fg
	colorSubtle = p.subtle
	colorHighlight = p.highlight

	// Tabs
	activeTabStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(colorPrimary).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(colorPrimary).
		Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
		Foreground(colorMuted).
		Padding(0, 2)

	// Panels
	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorSubtle).
		Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorPrimary).
		Padding(1, 2)

	// Text
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorFg)
	subtitleStyle = lipgloss.NewStyle().Foreground(colorMuted)
	accentStyle = lipgloss.NewStyle().Foreground(colorAccent)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	errorStyle = lipgloss.NewStyle().Foreground(colorError)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	highlightStyle = lipgloss.NewStyle().Foreground(colorHighlight)

	// Header/footer
	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(colorMuted).Padding(0, 1)

	// List items
	selectedItemStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	normalItemStyle = lipgloss.NewStyle().Foreground(colorFg)

	dayStyle = lipgloss.NewStyle().Foreground(colorFg).Width(5).Align(lipgloss.Center)
	otherMonthStyle = dayStyle.Foreground(colorSubtle)
	selectedDayStyle = dayStyle.Bold(true).Foreground(colorPrimary).Reverse(true)
	todayStyle = dayStyle.Bold(true).Foreground(colorSecondary).Underline(true)
	taskDotStyle = lipgloss.NewStyle().Foreground(colorAccent)
}

func priorityStyle(p store.Priority) lipgloss.Style {
	switch p {
	case store.PriorityHigh:
		return errorStyle
	case store.PriorityMedium:
		return warningStyle
	}
	return mutedStyle
}
