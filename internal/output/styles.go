package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette. Never use inline lipgloss.Color literals outside this block.
var (
	// ColorCyan is used for identifiable nouns: projects, releases, flows.
	ColorCyan = lipgloss.Color("14")

	// ColorGreen is used for the "generated", "created" and "deployed" statuses.
	ColorGreen = lipgloss.Color("82")

	// ColorYellow is used for the "skipped" status.
	ColorYellow = lipgloss.Color("220")

	// ColorRed is used for the "deleted" status.
	ColorRed = lipgloss.Color("196")

	// ColorBoldRed is used for the "failed" status (matches ERROR level).
	ColorBoldRed = lipgloss.Color("204")

	// ColorBlue is used for table headers.
	ColorBlue = lipgloss.Color("12")

	// ColorGreenCheck is used for the completion checkmark.
	ColorGreenCheck = lipgloss.Color("10")

	// ColorDimGray is used for borders and other structural chrome.
	ColorDimGray = lipgloss.Color("240")
)

// Semantic styles.
var (
	// StyleNoun styles identifiable nouns.
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleAction styles action verbs (generating, deploying, deleting).
	StyleAction = lipgloss.NewStyle().Bold(true)

	// StyleDim styles structural chrome (scope prefixes, separators).
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleSummary styles completion and summary lines.
	StyleSummary = lipgloss.NewStyle().Bold(true)
)

// Item status constants.
const (
	StatusGenerated = "generated"
	StatusReused    = "reused"
	StatusSkipped   = "skipped"
	StatusCreated   = "created"
	StatusDeleted   = "deleted"
	StatusDeployed  = "deployed"
	StatusFailed    = "failed"
)

// StatusStyle returns the lipgloss style for a given status string.
// Unknown statuses return an unstyled default.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case StatusGenerated, StatusCreated, StatusDeployed:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	case StatusSkipped:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case StatusReused:
		return lipgloss.NewStyle().Faint(true)
	case StatusDeleted:
		return lipgloss.NewStyle().Foreground(ColorRed)
	case StatusFailed:
		return lipgloss.NewStyle().Bold(true).Foreground(ColorBoldRed)
	default:
		return lipgloss.NewStyle()
	}
}

// minItemColumnWidth keeps status words aligned across lines.
const minItemColumnWidth = 40

// FormatItemLine renders "<kind>:<name>" followed by a right-aligned,
// color-coded status.
func FormatItemLine(kind, name, status string) string {
	padding := minItemColumnWidth - len(name)
	if padding < 2 {
		padding = 2
	}

	prefix := StyleDim.Render(kind + ":")
	return prefix + StyleNoun.Render(name) + strings.Repeat(" ", padding) + StatusStyle(status).Render(status)
}

// FormatCheckmark renders a green checkmark with a message for stdout output.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(ColorGreenCheck).Render("✔")
	return check + " " + msg
}

// FormatRelease renders a release reference as "name (#id)".
func FormatRelease(name string, id int64) string {
	return StyleNoun.Render(name) + StyleDim.Render(fmt.Sprintf(" (#%d)", id))
}
