package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/formtabs/internal/config"
	"github.com/vango-dev/formtabs/pkg/catalog"
	"github.com/vango-dev/formtabs/pkg/server"
)

func serveCmd(load configLoader) *cobra.Command {
	var (
		port int
		host string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve form layouts over HTTP",
		Long: `Serve form layouts as JSON over HTTP.

Layouts are loaded on first request and can be reloaded, edited and
watched over a WebSocket. Metrics are served at /metrics unless
disabled in the config.

Examples:
  formtabs serve
  formtabs serve --port=9000
  formtabs serve --host=0.0.0.0`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			return runServe(cmd, cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from formtabs.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from formtabs.json)")

	return cmd
}

func runServe(cmd *cobra.Command, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := cfg.Logger(os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	src, err := newSource(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	cat := catalog.New(src, catalog.Options{Logger: logger})
	srv := server.New(cat, serverConfig(cfg))
	srv.SetLogger(logger)

	out := newConsole(cmd.OutOrStdout())
	out.success("Serving forms from %s", sourceName(cfg))
	out.info("http://%s/forms", cfg.Address())
	if cfg.Metrics.Enabled {
		out.info("http://%s/metrics", cfg.Address())
	}
	fmt.Fprintln(out.w)

	return srv.Run(cmd.Context())
}

// serverConfig maps the project config onto the server config.
func serverConfig(cfg *config.Config) *server.Config {
	sc := server.DefaultConfig()
	sc.Address = cfg.Address()
	sc.Metrics = cfg.Metrics.Enabled
	sc.MetricsNamespace = cfg.Metrics.Namespace
	sc.Tracing = cfg.Tracing.Enabled
	sc.TracerName = cfg.Tracing.TracerName
	return sc
}

func sourceName(cfg *config.Config) string {
	if cfg.UsesS3() {
		return "s3://" + cfg.Source.S3.Bucket + "/" + cfg.Source.S3.Prefix
	}
	return cfg.FormsPath()
}
