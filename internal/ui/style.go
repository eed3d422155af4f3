package ui

import "github.com/charmbracelet/lipgloss"

var (
	priorityStyles = map[string]lipgloss.Style{
		"high":   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		"medium": lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		"low":    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
	overdueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	completedStyle = lipgloss.NewStyle().Faint(true).Strikethrough(true)
)

// Priority colors a priority label.
func Priority(priority string) string {
	style, ok := priorityStyles[priority]
	if !ok || !ANSIEnabled() {
		return priority
	}
	return style.Render(priority)
}

// Overdue colors a due date that has passed.
func Overdue(value string) string {
	if !ANSIEnabled() {
		return value
	}
	return overdueStyle.Render(value)
}

// Completed dims the text of a finished todo.
func Completed(value string) string {
	if !ANSIEnabled() {
		return value
	}
	return completedStyle.Render(value)
}

// Checkbox renders a completion marker.
func Checkbox(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}
