package formatting

import (
	"encoding/json"
	"fmt"
	"io"

	"quiver/internal/api"
)

// JSONFormatter provides structured JSON output formatting
type JSONFormatter struct {
	options Options
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(options Options) Formatter {
	return &JSONFormatter{
		options: options,
	}
}

// FormatDiscovery writes the full discovery result.
func (f *JSONFormatter) FormatDiscovery(w io.Writer, result api.DiscoveryResult) error {
	return f.write(w, result)
}

// FormatStatistics writes the statistics object.
func (f *JSONFormatter) FormatStatistics(w io.Writer, stats api.Statistics) error {
	return f.write(w, stats)
}

// FormatCategories writes {"categories": [...], "count": n}.
func (f *JSONFormatter) FormatCategories(w io.Writer, categories []string) error {
	if categories == nil {
		categories = []string{}
	}
	return f.write(w, map[string]interface{}{"categories": categories, "count": len(categories)})
}

func (f *JSONFormatter) write(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
