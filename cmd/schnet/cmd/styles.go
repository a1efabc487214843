package cmd

import "github.com/charmbracelet/lipgloss"

var (
	primary   = lipgloss.Color("#7C3AED")
	secondary = lipgloss.Color("#10B981")
	muted     = lipgloss.Color("#6B7280")
	warning   = lipgloss.Color("#F59E0B")
	danger    = lipgloss.Color("#EF4444")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primary)

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(secondary)

	keyStyle = lipgloss.NewStyle().
			Foreground(muted).
			Width(22)

	mutedStyle = lipgloss.NewStyle().
			Foreground(muted).
			Italic(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(warning)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(danger)
)

// field renders one aligned "key value" line
func field(key string, value any) string {
	return "  " + keyStyle.Render(key) + " " + toString(value)
}
