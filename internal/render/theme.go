// Package render formats agendas and feedback results for the terminal.
package render

import "github.com/charmbracelet/lipgloss"

var (
	Red    = lipgloss.Color("#e06c75")
	Green  = lipgloss.Color("#98c379")
	Yellow = lipgloss.Color("#e5c07b")
	Blue   = lipgloss.Color("#61afef")
	Grey   = lipgloss.Color("#7f848e")

	Heading = lipgloss.NewStyle().Bold(true).Foreground(Blue).MarginTop(1)
	Title   = lipgloss.NewStyle().Bold(true)
	Muted   = lipgloss.NewStyle().Foreground(Grey)
	Live    = lipgloss.NewStyle().Foreground(Green).Bold(true)
	Star    = lipgloss.NewStyle().Foreground(Yellow)
	Alert   = lipgloss.NewStyle().Foreground(Red)

	BannerBox = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Yellow).
		Padding(0, 1)
)
