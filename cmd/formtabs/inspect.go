package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/formtabs/internal/errors"
	"github.com/vango-dev/formtabs/pkg/formdef"
	"github.com/vango-dev/formtabs/pkg/formtabs"
)

type inspectOptions struct {
	section string
	flat    bool
	remove  []string
}

func inspectCmd(load configLoader) *cobra.Command {
	var opts inspectOptions

	cmd := &cobra.Command{
		Use:   "inspect <form>",
		Short: "Print the tab layout of a form",
		Long: `Print the tab layout of a form as a tree.

Each section lists its tabs with their fields in order. Sections that
suppress tabs list their fields directly.

Examples:
  formtabs inspect post
  formtabs inspect post --section primary
  formtabs inspect post --flat
  formtabs inspect post --remove content --remove tags`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			src, err := newSource(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			layout, err := formdef.Load(cmd.Context(), src, args[0])
			if err != nil {
				return err
			}
			return runInspect(cmd.OutOrStdout(), layout, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.section, "section", "s", "", "Only print this section (outside, primary or secondary)")
	cmd.Flags().BoolVar(&opts.flat, "flat", false, "List fields without grouping them into tabs")
	cmd.Flags().StringSliceVarP(&opts.remove, "remove", "r", nil, "Remove a field before printing (repeatable)")

	return cmd
}

func runInspect(w io.Writer, layout *formdef.Layout, opts inspectOptions) error {
	for _, name := range opts.remove {
		if !layout.RemoveField(name) {
			return errors.New("E022").
				WithDetail("Field " + name + " is not part of " + layout.Name + ".")
		}
	}

	sections := formtabs.Sections()
	if opts.section != "" {
		s := formtabs.ParseSection(opts.section, "")
		if !s.Known() {
			return errors.New("E021").
				WithDetail("Section " + opts.section + " does not exist.").
				WithSuggestion("Use one of outside, primary or secondary.").
				WithExample("formtabs inspect " + layout.Name + " --section primary")
		}
		sections = []formtabs.Section{s}
	}

	p := newTreePrinter(w)
	p.root(layout.Name)
	for i, s := range sections {
		tabs, _ := layout.Section(s)
		p.section(tabs, opts.flat, i == len(sections)-1)
	}
	return p.err
}

// treePrinter draws a layout as an indented tree.
type treePrinter struct {
	w   io.Writer
	err error
	palette
}

func newTreePrinter(w io.Writer) *treePrinter {
	return &treePrinter{w: w, palette: newPalette(w)}
}

func (p *treePrinter) line(prefix, text string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintln(p.w, prefix+text)
}

func (p *treePrinter) root(name string) {
	p.line("", p.title.Render(name))
}

func branch(last bool) (head, indent string) {
	if last {
		return "└── ", "    "
	}
	return "├── ", "│   "
}

func (p *treePrinter) section(tabs *formtabs.Tabs[*formdef.Field], flat, last bool) {
	head, indent := branch(last)

	var notes []string
	if tabs.SuppressTabs() {
		notes = append(notes, "tabs suppressed")
	}
	if d := tabs.DefaultTab(); d != formtabs.DefaultTabLabel && !tabs.SuppressTabs() {
		notes = append(notes, "default tab "+d)
	}
	p.line(head, p.title.Render(tabs.Section().String())+p.note(notes))

	if !tabs.HasFields() {
		p.line(indent+"└── ", p.dim.Render("(empty)"))
		return
	}

	if flat || tabs.SuppressTabs() {
		fields := tabs.AllFields()
		i := 0
		for name, f := range fields.All() {
			i++
			fh, _ := branch(i == fields.Len())
			tab := ""
			if flat && !tabs.SuppressTabs() {
				_, tab, _ = tabs.Field(name)
			}
			p.field(indent+fh, f, tab)
		}
		return
	}

	groups := tabs.Fields()
	i := 0
	for label, fields := range groups.All() {
		th, tindent := branch(i == groups.Len()-1)
		p.line(indent+th, p.tab.Render(label)+p.note(p.tabNotes(tabs, i, label)))
		j := 0
		for _, f := range fields.All() {
			j++
			fh, _ := branch(j == fields.Len())
			p.field(indent+tindent+fh, f, "")
		}
		i++
	}
}

func (p *treePrinter) tabNotes(tabs *formtabs.Tabs[*formdef.Field], index int, label string) []string {
	var notes []string
	if icon := tabs.Icon(label); icon != "" {
		notes = append(notes, "icon "+icon)
	}
	if class, ok := tabs.PaneClass(index, label); ok {
		notes = append(notes, "pane "+class)
	}
	if tabs.IsLazy(label) {
		notes = append(notes, "lazy")
	}
	return notes
}

func (p *treePrinter) field(prefix string, f *formdef.Field, tab string) {
	text := p.name.Render(f.Name)
	var notes []string
	if f.Label != "" {
		notes = append(notes, f.Label)
	}
	if f.Type != "" {
		notes = append(notes, f.Type)
	}
	if tab != "" {
		notes = append(notes, "tab "+tab)
	}
	p.line(prefix, text+p.note(notes))
}

func (p *treePrinter) note(notes []string) string {
	if len(notes) == 0 {
		return ""
	}
	return "  " + p.dim.Render(strings.Join(notes, " · "))
}
