package cmd

import (
	"context"
	"fmt"

	"quiver/internal/app"
	"quiver/internal/config"

	"github.com/spf13/cobra"
)

type serveOptions struct {
	transport  string
	catalogDir string
	watch      bool
}

// newServeCmd defines the serve command, which runs the MCP server until
// interrupted.
func newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the registry over the Model Context Protocol",
		Long: `Loads the catalog into a registry, registers the meta-tools and exposes
every non-deprecated tool and prompt to MCP clients.

Transports:
  streamable-http  (default) HTTP endpoint at http://host:port/mcp
  sse              Server-Sent Events endpoint at http://host:port/sse
  stdio            JSON-RPC over stdin/stdout; logs go to stderr

Configuration:
  quiver reads $HOME/.config/quiver/config.yaml unless --config is given.
  Every key can be overridden with a QUIVER_ environment variable, for
  example QUIVER_SERVER_PORT=9000. A .env file in the working directory is
  loaded first. Command-line flags take precedence over both.

With --watch the catalog directory is monitored and changed files are
re-registered without a restart; connected clients receive list-changed
notifications.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.transport, "transport", "", "MCP transport: streamable-http, sse or stdio")
	cmd.Flags().StringVar(&opts.catalogDir, "catalog", "", "Catalog directory of tool and prompt YAML files")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Reload catalog files when they change")

	_ = cmd.RegisterFlagCompletionFunc("transport", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{config.MCPTransportStreamableHTTP, config.MCPTransportSSE, config.MCPTransportStdio}, cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

// runServe is the main entry point for the serve command
func runServe(cmd *cobra.Command, opts *serveOptions) error {
	cfg := app.NewConfig(debug, configPath)
	cfg.Version = GetVersion()
	cfg.Transport = opts.transport
	cfg.CatalogDir = opts.catalogDir
	if cmd.Flags().Changed("watch") {
		cfg.Watch = &opts.watch
	}

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}
