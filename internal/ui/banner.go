package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	dangerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#CC0000")).
			Padding(0, 2)

	dangerBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#CC0000")).
			Padding(1, 3)

	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFAA00"))
)

// dangerBanner renders the boxed warning shown before a forced reset.
func dangerBanner(dbName string) string {
	body := lipgloss.JoinVertical(lipgloss.Center,
		dangerStyle.Render("DANGER: DATABASE RESET"),
		"",
		fmt.Sprintf("Database '%s' will be DROPPED and RECREATED.", dbName),
		"All existing tables and rows will be permanently lost.",
	)
	return dangerBoxStyle.Render(body)
}
