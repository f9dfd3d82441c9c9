package cli

import "github.com/charmbracelet/lipgloss"

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFBA08"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	nameStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))

	helpStyle = mutedStyle.Render
)

var (
	checkMark = successStyle.Render("✓")
	warnMark  = warnStyle.Render("!")
	crossMark = errorStyle.Render("✗")
	skipMark  = mutedStyle.Render("-")
)

const (
	padding  = 2
	maxWidth = 80
)
