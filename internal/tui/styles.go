package tui

import "github.com/charmbracelet/lipgloss"

var (
	primary     = lipgloss.Color("#8BC34A")
	border      = lipgloss.Color("#2a3850")
	muted       = lipgloss.Color("#6b7a90")
	destructive = lipgloss.Color("#e53935")
	info        = lipgloss.Color("#2196F3")
)

type Styles struct {
	Header    lipgloss.Style
	Muted     lipgloss.Style
	Info      lipgloss.Style
	Error     lipgloss.Style
	Label     lipgloss.Style
	Input     lipgloss.Style
	Focused   lipgloss.Style
	Selected  lipgloss.Style
	StatusBar lipgloss.Style
}

func DefaultStyles() Styles {
	input := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)

	return Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f2f2f2")).Background(lipgloss.Color("#101F38")).Padding(0, 1),
		Muted:     lipgloss.NewStyle().Foreground(muted),
		Info:      lipgloss.NewStyle().Foreground(info),
		Error:     lipgloss.NewStyle().Foreground(destructive),
		Label:     lipgloss.NewStyle().Bold(true),
		Input:     input,
		Focused:   input.BorderForeground(primary),
		Selected:  lipgloss.NewStyle().Foreground(primary).Bold(true).Underline(true),
		StatusBar: lipgloss.NewStyle().Foreground(info).Italic(true),
	}
}
