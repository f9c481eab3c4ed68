package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// buildInfo describes the running binary.
type buildInfo struct {
	Version  string
	Commit   string
	Date     string
	Modified bool
	Module   string
}

// readBuildInfo starts from the linker-set values and fills what is left
// unset from the module and VCS data embedded by the go command.
func readBuildInfo() buildInfo {
	b := buildInfo{Version: version, Commit: commit, Date: date}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}
	b.Module = info.Main.Path
	if b.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		b.Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if b.Commit == "none" {
				b.Commit = s.Value
			}
		case "vcs.time":
			if b.Date == "unknown" {
				b.Date = s.Value
			}
		case "vcs.modified":
			b.Modified = s.Value == "true"
		}
	}
	return b
}

func versionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print the version of the formtabs CLI.

Values not set at link time are taken from the module and VCS data
the go command embeds in the binary.`,
		Args: usageArgs(cobra.NoArgs),
		Run: func(cmd *cobra.Command, args []string) {
			b := readBuildInfo()
			out := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(out, b.Version)
				return
			}

			rev := b.Commit
			if b.Modified {
				rev += " (modified)"
			}
			fmt.Fprintf(out, "formtabs %s\n", b.Version)
			if b.Module != "" {
				fmt.Fprintf(out, "  module   %s\n", b.Module)
			}
			fmt.Fprintf(out, "  commit   %s\n", rev)
			fmt.Fprintf(out, "  built    %s\n", b.Date)
			fmt.Fprintf(out, "  go       %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only the version")

	return cmd
}
