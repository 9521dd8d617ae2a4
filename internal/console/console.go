// Package console renders the labeled progress and error lines shown to the
// user while configurations resolve and provisioners run.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	cyan  = lipgloss.Color("44")
	green = lipgloss.Color("76")
	red   = lipgloss.Color("204")
	dim   = lipgloss.Color("243")
)

// Printer writes styled lines to an output stream. Colors are dropped when
// the stream is not a terminal.
type Printer struct {
	out io.Writer

	info    lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style
}

// New returns a Printer writing to w.
func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		out:     w,
		info:    r.NewStyle().Foreground(cyan),
		success: r.NewStyle().Foreground(green),
		failure: r.NewStyle().Foreground(red),
		muted:   r.NewStyle().Foreground(dim),
	}
}

// Writer returns the underlying stream, for child process output.
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Info prints a plain informational line.
func (p *Printer) Info(format string, a ...any) {
	p.line(p.info, fmt.Sprintf(format, a...))
}

// Step prints a labeled progress line, e.g. "SHELL: install, inline script".
func (p *Printer) Step(label, format string, a ...any) {
	p.line(p.success, Label(label, fmt.Sprintf(format, a...)))
}

// Error prints a labeled failure line.
func (p *Printer) Error(label, format string, a ...any) {
	p.line(p.failure, Label(label, fmt.Sprintf(format, a...)))
}

// Detail prints a muted, indented line.
func (p *Printer) Detail(format string, a ...any) {
	p.line(p.muted, " >> "+fmt.Sprintf(format, a...))
}

// Success prints a checkmarked line.
func (p *Printer) Success(format string, a ...any) {
	p.line(p.success, "✓ "+fmt.Sprintf(format, a...))
}

// Label formats "LABEL: message" with the label upper-cased.
func Label(label, message string) string {
	if label == "" {
		return message
	}
	return strings.ToUpper(label) + ": " + message
}

func (p *Printer) line(style lipgloss.Style, s string) {
	_, _ = fmt.Fprintln(p.out, style.Render(s))
}
