package theme

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// nvmlsg Theme - palette taken from the Node.js brand colours
var (
	Primary   = lipgloss.Color("#5fa04e") // Node green
	Secondary = lipgloss.Color("#3c873a") // Dark green

	// Semantic colors
	Success = lipgloss.Color("#00d26a") // Green
	Error   = lipgloss.Color("#ff3b30") // Red
	Warning = lipgloss.Color("#ffcc00") // Yellow
	Info    = lipgloss.Color("#5ac8fa") // Light blue

	// UI colors
	TextFaint = lipgloss.Color("#8e8e93") // Gray
	Highlight = lipgloss.Color("#8cc84b") // Light green
)

// Styles - Pre-configured styles for common use cases
var (
	Subtitle = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(Info)

	Faint = lipgloss.NewStyle().
		Foreground(TextFaint).
		Faint(true)

	CurrentStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	LabelStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	// PathStyle is applied to the global prefix line of each report block
	PathStyle = lipgloss.NewStyle().
			Foreground(Highlight).
			Bold(true)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(Primary)

	SuccessBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Success).
			Padding(1, 3).
			Align(lipgloss.Center)
)

// DisableColor switches every style to plain text output
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// SuccessMessage returns a formatted success message
func SuccessMessage(msg string) string {
	return SuccessStyle.Render("✓ " + msg)
}

// ErrorMessage returns a formatted error message
func ErrorMessage(msg string) string {
	return ErrorStyle.Render("✗ " + msg)
}

// WarningMessage returns a formatted warning message
func WarningMessage(msg string) string {
	return WarningStyle.Render("⚠ " + msg)
}

// InfoMessage returns a formatted info message
func InfoMessage(msg string) string {
	return InfoStyle.Render("ℹ " + msg)
}
