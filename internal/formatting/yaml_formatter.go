package formatting

import (
	"encoding/json"
	"fmt"
	"io"

	"quiver/internal/api"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter provides YAML output formatting
type YAMLFormatter struct {
	options Options
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(options Options) Formatter {
	return &YAMLFormatter{
		options: options,
	}
}

// FormatDiscovery writes the full discovery result.
func (f *YAMLFormatter) FormatDiscovery(w io.Writer, result api.DiscoveryResult) error {
	return f.write(w, result)
}

// FormatStatistics writes the statistics object.
func (f *YAMLFormatter) FormatStatistics(w io.Writer, stats api.Statistics) error {
	return f.write(w, stats)
}

// FormatCategories writes the tag list with its count.
func (f *YAMLFormatter) FormatCategories(w io.Writer, categories []string) error {
	if categories == nil {
		categories = []string{}
	}
	return f.write(w, map[string]interface{}{"categories": categories, "count": len(categories)})
}

// write round-trips v through JSON so YAML keys match the JSON field names.
func (f *YAMLFormatter) write(w io.Writer, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}
