package tui

import (
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// StatusIcon returns the icon for a verification outcome.
func StatusIcon(valid bool) string {
	if valid {
		return "✓"
	}
	return "✗"
}

// StatusColor returns the semantic color for a verification outcome.
func StatusColor(valid bool) lipgloss.AdaptiveColor {
	if valid {
		return ColorSuccess
	}
	return ColorError
}

// StatusLabel title-cases a status string, so "invalid" becomes "Invalid".
func StatusLabel(status string) string {
	return cases.Title(language.English).String(status)
}

// RenderStatus renders icon, color, and label together. Color alone is never
// the only signal, so the output stays readable with NO_COLOR.
func RenderStatus(status string, valid bool) string {
	style := lipgloss.NewStyle().Foreground(StatusColor(valid)).Bold(true)
	return style.Render(StatusIcon(valid) + " " + StatusLabel(status))
}
