package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/homedash/internal/version"
)

// Application branding constants
const (
	AppName = "HOMEDASH"
)

// AppVersion returns the application version from the centralized version package
func AppVersion() string {
	return version.Version
}

// Layout constants for responsive terminal width
const (
	MinTerminalWidth = 72 // Minimum supported terminal width
	DefaultWidth     = 100
	DefaultHeight    = 36
)

// Color palette
var (
	PrimaryColor   = lipgloss.Color("#7D56F4") // Purple
	SecondaryColor = lipgloss.Color("#43BF6D") // Green
	WarningColor   = lipgloss.Color("#FFA500") // Orange
	ErrorColor     = lipgloss.Color("#FF0000") // Red

	TextColor   = lipgloss.Color("#FFFFFF") // White
	SubtleColor = lipgloss.Color("#626262") // Gray
	BorderColor = lipgloss.Color("#7D56F4") // Purple (same as primary)
)

var (
	TabStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Padding(0, 2)

	ActiveTabStyle = lipgloss.NewStyle().
			Foreground(TextColor).
			Background(PrimaryColor).
			Bold(true).
			Padding(0, 2)

	SectionTitleStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	SectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Width(16)

	ValueStyle = lipgloss.NewStyle().
			Foreground(TextColor)

	OnStyle = lipgloss.NewStyle().
		Foreground(SecondaryColor).
		Bold(true)

	OffStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	AlertStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	PendingStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	// Banner shown while the most recent poll failed
	ErrorBannerStyle = lipgloss.NewStyle().
				Foreground(ErrorColor).
				Bold(true).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ErrorColor).
				Padding(0, 1)

	WarningBannerStyle = lipgloss.NewStyle().
				Foreground(WarningColor).
				Border(lipgloss.RoundedBorder()).
				BorderForeground(WarningColor).
				Padding(0, 1)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor)

	FocusedInputStyle = lipgloss.NewStyle().
				Foreground(PrimaryColor).
				Bold(true)

	HintStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Italic(true)

	LinkStyle = lipgloss.NewStyle().
			Foreground(SubtleColor).
			Underline(true)

	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(WarningColor).
			Padding(1, 3)
)

// RenderField renders a "label  value" row
func RenderField(label, value string) string {
	return LabelStyle.Render(label) + ValueStyle.Render(value)
}

// RenderSection renders a titled, bordered group of lines
func RenderSection(title string, width int, lines ...string) string {
	body := SectionTitleStyle.Render(title) + "\n" + strings.Join(lines, "\n")
	return SectionStyle.Width(max(width-2, 20)).Render(body)
}

// RenderOnOff styles a boolean as ON/OFF
func RenderOnOff(b bool) string {
	if b {
		return OnStyle.Render("ON")
	}
	return OffStyle.Render("OFF")
}

// RenderSwatch renders a block filled with the given "#rrggbb" colour
func RenderSwatch(hex string) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render("      ")
}

// BuildHeaderContent creates header content with app name and backend URL
func BuildHeaderContent(backendURL string) string {
	left := lipgloss.NewStyle().
		Foreground(TextColor).
		Bold(true).
		Render(AppName + " v" + AppVersion())

	right := lipgloss.NewStyle().
		Foreground(SubtleColor).
		Render(backendURL)

	return lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", right)
}

// BuildFooterContent creates footer content with help text
func BuildFooterContent(helpText string) string {
	return lipgloss.NewStyle().
		Foreground(SubtleColor).
		Render(helpText)
}

// RenderApplicationContainer wraps a screen in the full-terminal frame:
// header with name, version and backend, the content, and a help footer.
func RenderApplicationContainer(content, footerText, backendURL string, terminalWidth, terminalHeight int) string {
	headerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Bottom: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-4).
		Padding(0, 1)

	footerStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.Border{Top: "─"}).
		BorderForeground(BorderColor).
		Width(terminalWidth-4).
		Padding(0, 1)

	// Callers control their own content margins
	contentStyle := lipgloss.NewStyle().
		Width(terminalWidth - 4)

	innerContent := lipgloss.JoinVertical(
		lipgloss.Left,
		headerStyle.Render(BuildHeaderContent(backendURL)),
		contentStyle.Render(content),
		footerStyle.Render(BuildFooterContent(footerText)),
	)

	borderStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(BorderColor).
		Width(terminalWidth - 2).
		Height(terminalHeight - 2).
		AlignVertical(lipgloss.Top)

	return lipgloss.Place(
		terminalWidth,
		terminalHeight,
		lipgloss.Left,
		lipgloss.Top,
		borderStyle.Render(innerContent),
	)
}

// RenderModal centers a dialog over a dimmed background
func RenderModal(modalContent string, terminalWidth, terminalHeight int) string {
	return lipgloss.Place(
		terminalWidth,
		terminalHeight,
		lipgloss.Center,
		lipgloss.Center,
		modalContent,
		lipgloss.WithWhitespaceChars("░"),
		lipgloss.WithWhitespaceForeground(lipgloss.Color("240")),
	)
}
