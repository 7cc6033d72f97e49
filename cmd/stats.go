package cmd

import (
	"github.com/spf13/cobra"
)

type statsOptions struct {
	catalogDir string
	categories bool
	output     string
}

func newStatsCmd() *cobra.Command {
	opts := &statsOptions{}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show registry statistics",
		Long: `Loads the catalog together with the built-in meta-tools and prints entry
counts, distinct authors and tags, and the average and highest version.
With --categories the distinct tags are listed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := newFormatter(cmd, opts.output)
			if err != nil {
				return err
			}
			reg, err := loadRegistryLenient(opts.catalogDir)
			if err != nil {
				return err
			}
			if opts.categories {
				return formatter.FormatCategories(cmd.OutOrStdout(), reg.GetCategories())
			}
			return formatter.FormatStatistics(cmd.OutOrStdout(), reg.GetStatistics())
		},
	}

	cmd.Flags().StringVar(&opts.catalogDir, "catalog", "", "Catalog directory (defaults to the configured one)")
	cmd.Flags().BoolVar(&opts.categories, "categories", false, "List the distinct tags instead of statistics")
	addOutputFlag(cmd, &opts.output)
	return cmd
}
