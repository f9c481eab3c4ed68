package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/vango-dev/formtabs/internal/errors"
)

// palette holds the styles used for terminal output.
type palette struct {
	ok    lipgloss.Style
	title lipgloss.Style
	name  lipgloss.Style
	tab   lipgloss.Style
	dim   lipgloss.Style
}

// newPalette returns styles rendered for w. Colors are dropped when w is
// not a terminal or --no-color is set.
func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	if !errors.ColorsEnabled() {
		r.SetColorProfile(termenv.Ascii)
	}
	return palette{
		ok:    r.NewStyle().Foreground(lipgloss.Color("10")),
		title: r.NewStyle().Bold(true),
		name:  r.NewStyle().Foreground(lipgloss.Color("12")),
		tab:   r.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		dim:   r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// console prints status lines.
type console struct {
	w io.Writer
	palette
}

func newConsole(w io.Writer) *console {
	return &console{w: w, palette: newPalette(w)}
}

// success prints a success message.
func (c *console) success(format string, args ...any) {
	fmt.Fprintf(c.w, "%s %s\n", c.ok.Render("✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func (c *console) info(format string, args ...any) {
	fmt.Fprintf(c.w, "  %s\n", fmt.Sprintf(format, args...))
}
