package cmd

import (
	"fmt"
	"strings"

	"quiver/internal/api"

	"github.com/spf13/cobra"
)

type listOptions struct {
	catalogDir   string
	entryType    string
	tags         []string
	author       string
	search       string
	deprecated   bool
	versionRange string
	sortBy       string
	sortOrder    string
	limit        int
	offset       int
	output       string
}

// newListCmd defines the list command, which runs a discovery query against
// a freshly loaded catalog.
func newListCmd() *cobra.Command {
	opts := &listOptions{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registry entries matching a discovery query",
		Long: `Loads the catalog together with the built-in meta-tools and prints the
entries matching the given filters. Filters are combined; --tag may be
repeated and matches entries carrying any of the listed tags.

Examples:
  quiver list --catalog ./catalog
  quiver list --type prompt --tag text --sort version --order desc
  quiver list --search summar --range ">=1.0.0 <2.0.0" -o json
  quiver list --deprecated=false --limit 10 --offset 20`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.catalogDir, "catalog", "", "Catalog directory (defaults to the configured one)")
	cmd.Flags().StringVar(&opts.entryType, "type", string(api.EntryTypeAll), "Entry type: tool, prompt or all")
	cmd.Flags().StringArrayVar(&opts.tags, "tag", nil, "Match entries with this tag (repeatable)")
	cmd.Flags().StringVar(&opts.author, "author", "", "Match entries by author")
	cmd.Flags().StringVar(&opts.search, "search", "", "Case-insensitive text search over name, description and tags")
	cmd.Flags().BoolVar(&opts.deprecated, "deprecated", false, "Match only deprecated (true) or only current (false) entries")
	cmd.Flags().StringVar(&opts.versionRange, "range", "", "Semantic version constraint, e.g. \">=1.2.0\"")
	cmd.Flags().StringVar(&opts.sortBy, "sort", string(api.SortByName), "Sort by: name, version, created or updated")
	cmd.Flags().StringVar(&opts.sortOrder, "order", string(api.SortAsc), "Sort order: asc or desc")
	cmd.Flags().IntVar(&opts.limit, "limit", api.DefaultDiscoveryLimit, "Maximum number of entries to show")
	cmd.Flags().IntVar(&opts.offset, "offset", 0, "Number of entries to skip")
	addOutputFlag(cmd, &opts.output)

	_ = cmd.RegisterFlagCompletionFunc("type", fixedCompletions(string(api.EntryTypeTool), string(api.EntryTypePrompt), string(api.EntryTypeAll)))
	_ = cmd.RegisterFlagCompletionFunc("sort", fixedCompletions(string(api.SortByName), string(api.SortByVersion), string(api.SortByCreated), string(api.SortByUpdated)))
	_ = cmd.RegisterFlagCompletionFunc("order", fixedCompletions(string(api.SortAsc), string(api.SortDesc)))
	return cmd
}

func fixedCompletions(values ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

// buildQuery turns the flags into a discovery query, rejecting values the
// registry would otherwise silently ignore.
func buildQuery(cmd *cobra.Command, opts *listOptions) (api.DiscoveryQuery, error) {
	q := api.DiscoveryQuery{
		Tags:         opts.tags,
		Author:       opts.author,
		SearchText:   opts.search,
		VersionRange: opts.versionRange,
		Limit:        opts.limit,
		Offset:       opts.offset,
	}

	switch t := api.EntryType(strings.ToLower(opts.entryType)); t {
	case api.EntryTypeTool, api.EntryTypePrompt:
		q.Type = t
	case api.EntryTypeAll, "":
	default:
		return q, fmt.Errorf("invalid --type %q (use tool, prompt or all)", opts.entryType)
	}

	switch s := api.SortField(strings.ToLower(opts.sortBy)); s {
	case api.SortByName, api.SortByVersion, api.SortByCreated, api.SortByUpdated:
		q.SortBy = s
	default:
		return q, fmt.Errorf("invalid --sort %q (use name, version, created or updated)", opts.sortBy)
	}

	switch o := api.SortOrder(strings.ToLower(opts.sortOrder)); o {
	case api.SortAsc, api.SortDesc:
		q.SortOrder = o
	default:
		return q, fmt.Errorf("invalid --order %q (use asc or desc)", opts.sortOrder)
	}

	if opts.limit <= 0 {
		return q, fmt.Errorf("--limit must be positive")
	}
	if opts.offset < 0 {
		return q, fmt.Errorf("--offset must not be negative")
	}

	if cmd.Flags().Changed("deprecated") {
		deprecated := opts.deprecated
		q.Deprecated = &deprecated
	}
	return q, nil
}

func runList(cmd *cobra.Command, opts *listOptions) error {
	q, err := buildQuery(cmd, opts)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(cmd, opts.output)
	if err != nil {
		return err
	}

	reg, err := loadRegistryLenient(opts.catalogDir)
	if err != nil {
		return err
	}
	return formatter.FormatDiscovery(cmd.OutOrStdout(), reg.GetDiscoveryEntries(q))
}
