package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/formtabs/internal/errors"
)

func explainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain [code]",
		Short: "Describe error codes",
		Long: `Describe the error codes formtabs reports.

Without an argument every code is listed with its category and message.

Examples:
  formtabs explain
  formtabs explain E021`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				return listCodes(out)
			}
			return explainCode(out, args[0])
		},
	}
}

func listCodes(w io.Writer) error {
	p := newPalette(w)
	for _, code := range errors.GetAllCodes() {
		t, _ := errors.GetTemplate(code)
		cat := string(t.Category)
		pad := strings.Repeat(" ", max(10-len(cat), 0))
		if _, err := fmt.Fprintf(w, "%s  %s%s  %s\n", p.title.Render(code), p.dim.Render(cat), pad, t.Message); err != nil {
			return err
		}
	}
	return nil
}

func explainCode(w io.Writer, code string) error {
	code = strings.ToUpper(code)
	t, ok := errors.GetTemplate(code)
	if !ok {
		return errors.New("E140").
			WithDetail("No error has code " + code + ".").
			WithSuggestion("Run 'formtabs explain' to list all codes.")
	}

	p := newPalette(w)
	text := p.title.Render(code+": "+t.Message) + "  " + p.dim.Render(string(t.Category)) + "\n"
	if t.Detail != "" {
		text += "\n" + t.Detail + "\n"
	}
	_, err := io.WriteString(w, text)
	return err
}
