package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorAccent  = lipgloss.Color("#6699FF")
	colorSuccess = lipgloss.Color("#66E666")
	colorWarning = lipgloss.Color("#E6E666")
	colorDanger  = lipgloss.Color("#E66666")
	colorMuted   = lipgloss.Color("#808080")
	colorText    = lipgloss.Color("#FFFFFF")
)

var (
	styleClock = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	styleDate  = lipgloss.NewStyle().Foreground(colorMuted)

	styleSection = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)

	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleLabel = lipgloss.NewStyle().Width(12)
	styleMuted = lipgloss.NewStyle().Foreground(colorMuted)
	styleApp   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleError = lipgloss.NewStyle().Foreground(colorDanger)
)

// levelStyle colors a 0-100 value the way the window does: green below 50,
// yellow below 80, red above.
func levelStyle(pct float64) lipgloss.Style {
	switch {
	case pct < 50:
		return lipgloss.NewStyle().Foreground(colorSuccess)
	case pct < 80:
		return lipgloss.NewStyle().Foreground(colorWarning)
	default:
		return lipgloss.NewStyle().Foreground(colorDanger)
	}
}
