package main

import "github.com/charmbracelet/lipgloss"

// Centralized style definitions for the dashboard TUI.
var (
	// Header styles.
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")) // cyan
	pluginStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4")) // blue

	// Widget styles.
	labelStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	focusedLabelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5")) // magenta
	valueStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	sliderFillStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	sliderTrackStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	buttonStyle       = lipgloss.NewStyle().Padding(0, 1).Background(lipgloss.Color("8")).Foreground(lipgloss.Color("15"))
	focusedButtonStyle = lipgloss.NewStyle().Padding(0, 1).Background(lipgloss.Color("5")).Foreground(lipgloss.Color("15")).Bold(true)

	// General utility styles.
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")) // gray
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	// Error block style.
	errorBlockStyle = lipgloss.NewStyle().
			PaddingLeft(1).
			BorderLeft(true).
			BorderStyle(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("1"))

	// Data inspector overlay.
	inspectorStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8"))
)

// Tree-drawing characters for grouping widgets under their plugin.
const (
	treeCorner = "└ "
	treePipe   = "│ "
)
