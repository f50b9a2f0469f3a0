package tui

import "github.com/charmbracelet/lipgloss"

type theme struct {
	header     lipgloss.Style
	user       lipgloss.Style
	assistant  lipgloss.Style
	attachment lipgloss.Style
	status     lipgloss.Style
	info       lipgloss.Style
	warn       lipgloss.Style
	err        lipgloss.Style
	panel      lipgloss.Style
	panelTitle lipgloss.Style
	selected   lipgloss.Style
	muted      lipgloss.Style
	input      lipgloss.Style
}

func newTheme() theme {
	blue := lipgloss.Color("#01cdfe")
	mint := lipgloss.Color("#05ffa1")
	pink := lipgloss.Color("#ff71ce")
	amber := lipgloss.Color("#ffb86c")
	muted := lipgloss.Color("#9ca3d8")

	return theme{
		header: lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(blue),
		user:       lipgloss.NewStyle().Foreground(blue).Bold(true),
		assistant:  lipgloss.NewStyle().Foreground(mint).Bold(true),
		attachment: lipgloss.NewStyle().Foreground(muted).Italic(true),
		status:     lipgloss.NewStyle().Foreground(muted).Italic(true),
		info:       lipgloss.NewStyle().Foreground(blue),
		warn:       lipgloss.NewStyle().Foreground(amber),
		err:        lipgloss.NewStyle().Foreground(pink).Bold(true),
		panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1),
		panelTitle: lipgloss.NewStyle().Foreground(mint).Bold(true),
		selected:   lipgloss.NewStyle().Foreground(pink).Bold(true),
		muted:      lipgloss.NewStyle().Foreground(muted),
		input: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(mint).
			Padding(0, 1),
	}
}
