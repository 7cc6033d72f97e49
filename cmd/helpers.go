package cmd

import (
	"errors"
	"fmt"
	"os"

	"quiver/internal/app"
	"quiver/internal/catalog"
	"quiver/internal/formatting"
	"quiver/internal/registry"
	"quiver/pkg/logging"

	"github.com/spf13/cobra"
)

// loadRegistry builds a registry for the one-shot commands from the loaded
// configuration, with catalogDir overriding the configured directory.
// Catalog load errors are returned next to the partially loaded registry.
func loadRegistry(catalogDir string) (*registry.Registry, error) {
	cfg := app.NewConfig(debug, configPath)
	cfg.CatalogDir = catalogDir

	qc, err := app.LoadConfig(cfg)
	if err != nil {
		return nil, err
	}

	level := logging.LevelWarn
	if debug {
		level = logging.LevelDebug
	}
	logging.InitForCLI(level, os.Stderr)

	return app.LoadRegistry(qc.Registry, qc.Catalog.Dir)
}

// loadRegistryLenient is loadRegistry for views that still make sense over
// a partial catalog: per-file failures are logged and dropped.
func loadRegistryLenient(catalogDir string) (*registry.Registry, error) {
	reg, err := loadRegistry(catalogDir)
	var loadErrs catalog.LoadErrors
	if errors.As(err, &loadErrs) && reg != nil {
		for _, le := range loadErrs {
			logging.Warn("CLI", "Skipping %s: %v", le.Path, le.Err)
		}
		return reg, nil
	}
	return reg, err
}

// newFormatter creates the formatter selected by --output.
func newFormatter(cmd *cobra.Command, output string) (formatting.Formatter, error) {
	f, err := formatting.NewFormatter(formatting.Options{
		Format: formatting.OutputFormat(output),
		Color:  isTerminal(cmd),
	})
	if err != nil {
		return nil, fmt.Errorf("invalid --output: %w", err)
	}
	return f, nil
}

// isTerminal reports whether the command writes to an interactive terminal.
func isTerminal(cmd *cobra.Command) bool {
	f, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func addOutputFlag(cmd *cobra.Command, output *string) {
	cmd.Flags().StringVarP(output, "output", "o", string(formatting.FormatTable), "Output format: table, json or yaml")
	_ = cmd.RegisterFlagCompletionFunc("output", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{string(formatting.FormatTable), string(formatting.FormatJSON), string(formatting.FormatYAML)}, cobra.ShellCompDirectiveNoFileComp
	})
}
