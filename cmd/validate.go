package cmd

import (
	"errors"
	"fmt"

	"quiver/internal/catalog"
	"quiver/internal/metatools"

	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var catalogDir string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that every catalog file loads",
		Long: `Loads the catalog into a fresh registry and reports every file that fails
to parse or register. The command exits with status 3 when any file fails
and with status 2 when the configuration itself is invalid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := loadRegistry(catalogDir)
			var loadErrs catalog.LoadErrors
			if errors.As(err, &loadErrs) {
				return fmt.Errorf("catalog validation failed: %w", loadErrs)
			}
			if err != nil {
				return err
			}

			stats := reg.GetStats()
			meta := reg.GetByTags(metatools.MetaTag).Pagination.Total
			fmt.Fprintf(cmd.OutOrStdout(), "Catalog %s is valid: %d tools, %d prompts (%d deprecated)\n",
				catalogDir, stats.ToolsCount-meta, stats.PromptsCount, stats.DeprecatedCount)
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogDir, "catalog", "", "Catalog directory to validate")
	_ = cmd.MarkFlagRequired("catalog")
	return cmd
}
