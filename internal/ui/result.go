package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Field is one key-value line of a box. Fields render in slice order.
type Field struct {
	Key   string
	Value string
}

// ResultType indicates success or failure
type ResultType int

const (
	ResultSuccess ResultType = iota
	ResultFailure
	ResultWarning
)

// Result represents a result box (success, failure, or warning)
type Result struct {
	Type            ResultType
	Title           string
	Details         []Field
	Error           error
	Troubleshooting []string
	Width           int
}

// NewSuccessResult creates a success result box
func NewSuccessResult(title string, details ...Field) *Result {
	return &Result{Type: ResultSuccess, Title: title, Details: details, Width: GetTerminalWidth()}
}

// NewFailureResult creates a failure result box
func NewFailureResult(title string, err error, troubleshooting []string) *Result {
	return &Result{
		Type:            ResultFailure,
		Title:           title,
		Error:           err,
		Troubleshooting: troubleshooting,
		Width:           GetTerminalWidth(),
	}
}

// NewWarningResult creates a warning result box
func NewWarningResult(title string, details ...Field) *Result {
	return &Result{Type: ResultWarning, Title: title, Details: details, Width: GetTerminalWidth()}
}

// SetWidth sets the width for rendering
func (r *Result) SetWidth(width int) *Result {
	r.Width = width
	return r
}

// Render returns the styled result box as a string
func (r *Result) Render() string {
	width := max(r.Width, MinTerminalWidth)

	var (
		title lipgloss.Style
		color lipgloss.Color
		label string
	)
	switch r.Type {
	case ResultFailure:
		title, color, label = ErrorTitleStyle, ErrorColor, FailureMarker+"  FAILED"
	case ResultWarning:
		title, color, label = WarningTitleStyle, WarningColor, WarningMarker+"  WARNING"
	default:
		title, color, label = SuccessTitleStyle, SuccessColor, SuccessMarker+"  SUCCESS"
	}

	lines := []string{"", title.Render(fmt.Sprintf(" %s  ─  %s", label, r.Title)), ""}

	if r.Error != nil {
		lines = append(lines, ErrorMessageStyle.Render(" Error: "+r.Error.Error()), "")
	}

	if len(r.Details) > 0 {
		lines = append(lines, renderFields(r.Details), "")
	}

	if len(r.Troubleshooting) > 0 {
		lines = append(lines, r.renderTroubleshootingBox(width), "")
	}

	return boxStyle(color, width).Render(strings.Join(lines, "\n"))
}

func (r *Result) renderTroubleshootingBox(width int) string {
	lines := []string{TroubleshootingTitleStyle.Render("Troubleshooting:"), ""}
	for _, tip := range r.Troubleshooting {
		lines = append(lines, TroubleshootingItemStyle.Render("  • "+tip))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(max(width-12, 40)).
		Padding(0, 1).
		MarginLeft(1).
		Render(strings.Join(lines, "\n"))
}

// String implements fmt.Stringer
func (r *Result) String() string {
	return r.Render()
}

func renderFields(fields []Field) string {
	lines := make([]string, 0, len(fields))
	for _, f := range fields {
		lines = append(lines, ResultKeyStyle.Render(" "+f.Key+":")+" "+ResultValueStyle.Render(f.Value))
	}
	return strings.Join(lines, "\n")
}
