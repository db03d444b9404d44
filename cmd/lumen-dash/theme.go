package main

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual styling for the lumen dashboard.
type Theme struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Muted     lipgloss.Color
}

// DefaultTheme returns the default theme for lumen-dash.
func DefaultTheme() Theme {
	return Theme{
		Primary:   lipgloss.Color("12"),  // Blue
		Secondary: lipgloss.Color("14"),  // Cyan
		Success:   lipgloss.Color("10"),  // Green
		Warning:   lipgloss.Color("11"),  // Yellow
		Error:     lipgloss.Color("9"),   // Red
		Muted:     lipgloss.Color("240"), // Gray
	}
}

// Styles holds the derived lipgloss styles used by the views.
type Styles struct {
	Title       lipgloss.Style
	FilterLine  lipgloss.Style
	MetricName  lipgloss.Style
	MetricValue lipgloss.Style
	Sentinel    lipgloss.Style
	Selected    lipgloss.Style
	Success     lipgloss.Style
	Failure     lipgloss.Style
	Warning     lipgloss.Style
	Error       lipgloss.Style
	Help        lipgloss.Style
}

// DefaultStyles derives styles from the default theme.
func DefaultStyles() Styles {
	theme := DefaultTheme()
	return Styles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		FilterLine:  lipgloss.NewStyle().Foreground(theme.Secondary),
		MetricName:  lipgloss.NewStyle().Foreground(theme.Muted),
		MetricValue: lipgloss.NewStyle().Bold(true),
		Sentinel:    lipgloss.NewStyle().Foreground(theme.Muted).Italic(true),
		Selected:    lipgloss.NewStyle().Reverse(true),
		Success:     lipgloss.NewStyle().Foreground(theme.Success),
		Failure:     lipgloss.NewStyle().Foreground(theme.Error),
		Warning:     lipgloss.NewStyle().Foreground(theme.Warning),
		Error:       lipgloss.NewStyle().Foreground(theme.Error),
		Help:        lipgloss.NewStyle().Foreground(theme.Muted),
	}
}
