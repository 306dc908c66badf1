package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/anshulm/replrun/internal/replicate"
)

var (
	okMarkStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")) // green

	warnMarkStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")) // orange

	errMarkStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")) // red
)

// renderOutcome prefixes the outcome message with a styled severity marker.
func renderOutcome(o replicate.Outcome) string {
	switch o.Severity() {
	case replicate.SeverityOK:
		return okMarkStyle.Render("✔") + " " + o.Message()
	case replicate.SeverityWarning:
		return warnMarkStyle.Render("⚠") + " " + o.Message()
	default:
		return errMarkStyle.Render("✖") + " " + o.Message()
	}
}
