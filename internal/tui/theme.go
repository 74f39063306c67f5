package tui

import "github.com/charmbracelet/lipgloss"

const (
	colorBrand   lipgloss.Color = "#2e7d32"
	colorAccent  lipgloss.Color = "#f9a825"
	colorText    lipgloss.Color = "#e0e0e0"
	colorMuted   lipgloss.Color = "#9e9e9e"
	colorError   lipgloss.Color = "#e57373"
	colorSurface lipgloss.Color = "#263238"
)

var (
	brandStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorBrand)
	accentStyle   = lipgloss.NewStyle().Foreground(colorAccent)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	mutedStyle    = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle    = lipgloss.NewStyle().Foreground(colorError)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	chipStyle     = lipgloss.NewStyle().Padding(0, 1).Foreground(colorMuted)
	chipOnStyle   = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(colorText).Background(colorBrand)
	navStyle      = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderTop(true).BorderForeground(colorSurface)
	cardStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorSurface).Padding(0, 1)
)
