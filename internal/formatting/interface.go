// Package formatting renders discovery results and registry statistics for
// the command line in table, JSON or YAML form.
package formatting

import (
	"fmt"
	"io"

	"quiver/internal/api"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatTable OutputFormat = "table" // Rich table output
	FormatJSON  OutputFormat = "json"  // JSON output
	FormatYAML  OutputFormat = "yaml"  // YAML output
)

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	Quiet  bool // Suppress decorative elements
	Color  bool // Enable colored output
}

// Formatter writes registry views to an output stream.
type Formatter interface {
	FormatDiscovery(w io.Writer, result api.DiscoveryResult) error
	FormatStatistics(w io.Writer, stats api.Statistics) error
	FormatCategories(w io.Writer, categories []string) error
}

// NewFormatter returns the formatter for options.Format.
func NewFormatter(options Options) (Formatter, error) {
	switch options.Format {
	case FormatTable, "":
		return NewTableFormatter(options), nil
	case FormatJSON:
		return NewJSONFormatter(options), nil
	case FormatYAML:
		return NewYAMLFormatter(options), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (use table, json or yaml)", options.Format)
	}
}
