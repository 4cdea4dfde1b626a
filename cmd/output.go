package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/message"

	"grimm.is/presetctl/internal/i18n"
)

// Palette
var (
	ColorGood  = lipgloss.Color("#4ECDC4")
	ColorWarn  = lipgloss.Color("#FFE66D")
	ColorAlert = lipgloss.Color("#FF6B6B")
	ColorMuted = lipgloss.Color("#6c757d")
	ColorTitle = lipgloss.Color("#A8D8EA")
)

// Styles
var (
	StyleStatusGood = lipgloss.NewStyle().Foreground(ColorGood).Bold(true)
	StyleStatusWarn = lipgloss.NewStyle().Foreground(ColorWarn).Bold(true)
	StyleStatusBad  = lipgloss.NewStyle().Foreground(ColorAlert).Bold(true)
	StyleMuted      = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleTitle      = lipgloss.NewStyle().Foreground(ColorTitle).Bold(true)
)

// Output writes CLI text, coloured only when Color is set.
type Output struct {
	W       io.Writer
	Color   bool
	Printer *message.Printer
}

// NewOutput creates an Output using the locale printer.
func NewOutput(w io.Writer, color bool) *Output {
	return &Output{W: w, Color: color, Printer: i18n.NewCLIPrinter()}
}

func (o *Output) render(style lipgloss.Style, s string) string {
	if !o.Color {
		return s
	}
	return style.Render(s)
}

// Printf formats through the locale printer.
func (o *Output) Printf(format string, args ...any) {
	o.Printer.Fprintf(o.W, format, args...)
}

// Title prints a heading line.
func (o *Output) Title(format string, args ...any) {
	fmt.Fprintln(o.W, o.render(StyleTitle, fmt.Sprintf(format, args...)))
}

// Status prints "<STATUS>: text" with the prefix coloured by severity.
func (o *Output) Status(status, text string) {
	style := StyleMuted
	switch status {
	case "OK", "applied", "planned":
		style = StyleStatusGood
	case "WARN", "skipped":
		style = StyleStatusWarn
	case "ERROR", "failed":
		style = StyleStatusBad
	}
	fmt.Fprintf(o.W, "%s: %s\n", o.render(style, status), text)
}

// Plain prints an uncoloured line.
func (o *Output) Plain(format string, args ...any) {
	fmt.Fprintf(o.W, format+"\n", args...)
}
