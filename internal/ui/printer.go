package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes styled command output.
type Printer struct {
	out   io.Writer
	width int
}

// NewPrinter creates a printer for w, or os.Stdout when w is nil.
func NewPrinter(w io.Writer) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{out: w, width: GetTerminalWidth()}
}

// Width returns the width used for boxes
func (p *Printer) Width() int {
	return p.width
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// PrintHeader prints a command header box
func (p *Printer) PrintHeader(title, command string, params ...Field) {
	p.Println(RenderHeader(title, command, params, p.width))
}

// PrintSuccess prints a success result box
func (p *Printer) PrintSuccess(title string, details ...Field) {
	p.Println(NewSuccessResult(title, details...).SetWidth(p.width).Render())
}

// PrintWarning prints a warning result box
func (p *Printer) PrintWarning(title string, details ...Field) {
	p.Println(NewWarningResult(title, details...).SetWidth(p.width).Render())
}

// PrintError prints an error result box with troubleshooting tips
func (p *Printer) PrintError(title string, err error, troubleshooting []string) {
	p.Println(NewFailureResult(title, err, troubleshooting).SetWidth(p.width).Render())
}

// RenderHeader renders a command header box
func RenderHeader(title, command string, params []Field, width int) string {
	width = max(width, MinTerminalWidth)

	top := lipgloss.JoinVertical(lipgloss.Left,
		HeaderTitleStyle.Render(strings.ToUpper(title)),
		HeaderCommandStyle.Render(command))

	content := top
	if len(params) > 0 {
		divider := RenderHorizontalDivider(max(width-6, 10), "─")
		content = lipgloss.JoinVertical(lipgloss.Left, top, divider, renderFields(params))
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2).
		Render(content)
}
