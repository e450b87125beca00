package tui

import (
	"github.com/charmbracelet/lipgloss"

	"backoffice/internal/version"
)

// Application branding constants
const (
	AppName = "BACKOFFICE CUSTOMERS"
)

// AppVersion returns the application version from the centralized version package
func AppVersion() string {
	return version.Version
}

// Layout constants for responsive terminal width
const (
	MinTerminalWidth = 72  // Minimum supported terminal width
	MaxContentWidth  = 120 // Maximum content width before capping
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7D56F4") // Purple
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	WarningColor   = lipgloss.Color("#FFA500") // Orange
	ErrorColor     = lipgloss.Color("#FF5555") // Red

	TextColor      = lipgloss.Color("#FFFFFF") // White
	SubtleColor    = lipgloss.Color("#626262") // Gray
	BorderColor    = lipgloss.Color("#7D56F4") // Purple (same as primary)
	HighlightColor = lipgloss.Color("#43BF6D") // Green (same as secondary)
)

// Common styles
var (
	// Title style for screen headings
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true).
			Padding(1, 0)

	// Subtitle style
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	// Help text style
	HelpStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Padding(1, 0)

	// Error line shown in the list status area
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	// Status line for transient notices
	StatusStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)

	// Muted text for secondary information
	MutedStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// Field labels in the form and detail screens
	LabelStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Width(10)

	// Focused input style
	FocusedInputStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	// Spinner style
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	// Box style for the form and detail panels
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(1, 2)

	// Pagination footer: enabled and disabled control states
	PagerEnabledStyle = lipgloss.NewStyle().
				Foreground(TextColor).
				Bold(true)
	PagerDisabledStyle = lipgloss.NewStyle().
				Foreground(SubtleColor)
)

// RenderError renders an error message for the status line.
func RenderError(text string) string {
	return ErrorStyle.Render("✗ " + text)
}

// RenderHeader creates the shared application header line.
func RenderHeader() string {
	name := lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true).
		Render(AppName)
	ver := MutedStyle.Render("v" + AppVersion())
	return lipgloss.JoinHorizontal(lipgloss.Top, name, " ", ver)
}

// ContentWidth caps the usable width for wide terminals.
func ContentWidth(terminalWidth int) int {
	if terminalWidth < MinTerminalWidth {
		return MinTerminalWidth
	}
	if terminalWidth > MaxContentWidth {
		return MaxContentWidth
	}
	return terminalWidth
}
