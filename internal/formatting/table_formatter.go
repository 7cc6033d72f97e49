package formatting

import (
	"fmt"
	"io"
	"strings"

	"quiver/internal/api"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const maxDescriptionWidth = 60

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(options Options) Formatter {
	return &TableFormatter{
		options: options,
	}
}

// FormatDiscovery renders one row per entry followed by a pagination line.
func (f *TableFormatter) FormatDiscovery(w io.Writer, result api.DiscoveryResult) error {
	if len(result.Entries) == 0 {
		_, err := fmt.Fprint(w, f.formatEmptyMessage("📋", "No entries found"))
		return err
	}

	t := f.createTable(w)
	t.AppendHeader(f.header("NAME", "TYPE", "VERSION", "AUTHOR", "TAGS", "DESCRIPTION"))
	for _, e := range result.Entries {
		name := e.Name
		if e.Deprecated {
			name = f.color(text.FgYellow, name+" (deprecated)")
		}
		t.AppendRow(table.Row{
			name,
			string(e.Type),
			e.Version,
			e.Author,
			strings.Join(e.Tags, ", "),
			text.Snip(e.Description, maxDescriptionWidth, "..."),
		})
	}
	t.Render()

	if f.options.Quiet {
		return nil
	}
	p := result.Pagination
	_, err := fmt.Fprintf(w, "\n%s %d-%d of %d (tools: %d, prompts: %d)\n",
		f.color(text.FgHiBlue, "Showing"),
		min(p.Offset+1, p.Total), p.Offset+len(result.Entries), p.Total,
		result.Metadata.TotalTools, result.Metadata.TotalPrompts)
	return err
}

// FormatStatistics renders statistics as key-value pairs.
func (f *TableFormatter) FormatStatistics(w io.Writer, stats api.Statistics) error {
	t := f.createTable(w)
	t.AppendHeader(f.header("METRIC", "VALUE"))
	t.AppendRows([]table.Row{
		{"Total entries", stats.TotalEntries},
		{"Tools", stats.Tools},
		{"Prompts", stats.Prompts},
		{"Deprecated", stats.Deprecated},
		{"Distinct authors", stats.Authors},
		{"Distinct tags", stats.Tags},
		{"Average version", stats.AverageVersion},
		{"Max version", stats.MaxVersion},
	})
	t.Render()
	return nil
}

// FormatCategories renders the tag list.
func (f *TableFormatter) FormatCategories(w io.Writer, categories []string) error {
	if len(categories) == 0 {
		_, err := fmt.Fprint(w, f.formatEmptyMessage("🏷", "No categories found"))
		return err
	}
	t := f.createTable(w)
	t.AppendHeader(f.header("CATEGORY"))
	for _, c := range categories {
		t.AppendRow(table.Row{c})
	}
	t.Render()
	return nil
}

// Helper methods

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

func (f *TableFormatter) header(names ...string) table.Row {
	row := make(table.Row, len(names))
	for i, n := range names {
		row[i] = f.color(text.FgHiCyan, n)
	}
	return row
}

func (f *TableFormatter) color(c text.Color, s string) string {
	if !f.options.Color {
		return s
	}
	return c.Sprint(s)
}

// formatEmptyMessage formats empty result messages
func (f *TableFormatter) formatEmptyMessage(icon, message string) string {
	return fmt.Sprintf("%s %s\n", f.color(text.FgYellow, icon), f.color(text.FgYellow, message))
}
