package main

import "github.com/charmbracelet/lipgloss"

var (
	colorInfo    = lipgloss.Color("#5FAFFF")
	colorMuted   = lipgloss.Color("#888888")
	colorSuccess = lipgloss.Color("#00D787")
	colorAccent  = lipgloss.Color("#AF87FF")
)

var (
	styleTitle   = lipgloss.NewStyle().Foreground(colorInfo).Bold(true)
	styleMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	styleSuccess = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	styleAccent  = lipgloss.NewStyle().Foreground(colorAccent)
	styleBold    = lipgloss.NewStyle().Bold(true)
)

func headerBox(title string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(colorInfo).
		Padding(0, 1).
		Render(styleTitle.Render(title))
}
