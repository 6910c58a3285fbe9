package tui

import "github.com/charmbracelet/lipgloss"

// theme holds every style the browser draws with.
type theme struct {
	prompt  lipgloss.Style
	input   lipgloss.Style
	cursor  lipgloss.Style
	file    lipgloss.Style
	dir     lipgloss.Style
	empty   lipgloss.Style
	list    lipgloss.Style
	preview lipgloss.Style
	status  lipgloss.Style
	scope   lipgloss.Style
}

func newTheme() theme {
	accent := lipgloss.Color("12")
	muted := lipgloss.Color("240")
	frame := lipgloss.NewStyle().Border(lipgloss.RoundedBorder())

	return theme{
		prompt:  lipgloss.NewStyle().Foreground(accent).Bold(true),
		input:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		cursor:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		file:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		dir:     lipgloss.NewStyle().Foreground(muted),
		empty:   lipgloss.NewStyle().Foreground(muted).Italic(true),
		list:    frame.BorderForeground(lipgloss.Color("238")),
		preview: frame.BorderForeground(accent),
		status:  lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
		scope:   lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
	}
}

var styles = newTheme()
