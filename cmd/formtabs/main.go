package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/formtabs/internal/config"
	"github.com/vango-dev/formtabs/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	c := &cli{}
	if err := c.rootCmd().ExecuteContext(context.Background()); err != nil {
		c.printError(os.Stderr, err)
		os.Exit(1)
	}
}

// cli holds the state shared by the root flags and the subcommands.
type cli struct {
	configPath string
	noColor    bool

	// jsonErrors is set once a config asking for JSON logs is loaded.
	jsonErrors bool
}

func (c *cli) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "formtabs",
		Short: "Inspect and serve form tab layouts",
		Long: `formtabs groups the fields of form definitions into tabs.

Definitions are YAML, JSON or HCL files read from a directory or an
S3 bucket. Each form has three sections: outside, primary and
secondary.

Configuration is read from formtabs.json (or --config) and may be
overridden with FORMTABS_ environment variables, e.g.
FORMTABS_SERVER_PORT=9000.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			errors.SetColors(!c.noColor)
		},
	}

	cmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "Path to the config file (default ./formtabs.json)")
	cmd.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "Disable colored output")
	cmd.SetFlagErrorFunc(usageError)

	cmd.AddCommand(
		inspectCmd(c.load),
		serveCmd(c.load),
		explainCmd(),
		versionCmd(),
	)
	return cmd
}

// load reads the configuration selected by --config.
func (c *cli) load() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.LoadFile(c.configPath)
	} else {
		cfg, err = config.Load(".")
	}
	if err != nil {
		return nil, err
	}
	c.jsonErrors = cfg.Log.Format == "json"
	return cfg, nil
}

// printError reports err in the format the loaded config logs in.
func (c *cli) printError(w io.Writer, err error) {
	if c.jsonErrors {
		errors.FprintJSON(w, err)
		return
	}
	errors.Fprint(w, err)
}

// configLoader loads the configuration selected by the root flags.
type configLoader func() (*config.Config, error)

// usageError reports a bad flag or argument as E140.
func usageError(cmd *cobra.Command, err error) error {
	return errors.New("E140").
		Wrap(err).
		WithSuggestion("Run '" + cmd.CommandPath() + " --help' for usage.")
}

// usageArgs reports the failures of check as usage errors.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError(cmd, err)
		}
		return nil
	}
}
