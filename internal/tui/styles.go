package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	doneStyle     = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	mutedStyle    = lipgloss.NewStyle().Faint(true)
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1)
	boxChecked    = "[x]"
	boxUnchecked  = "[ ]"
	cursorMarker  = "> "
	noCursorSpace = "  "
)
