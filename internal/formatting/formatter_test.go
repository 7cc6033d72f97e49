package formatting

import (
	"bytes"
	"encoding/json"
	"testing"

	"quiver/internal/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleResult() api.DiscoveryResult {
	return api.DiscoveryResult{
		Entries: []api.DiscoveryEntry{
			{Name: "quiver__greet", Type: api.EntryTypePrompt, Version: "1.0.0", Author: "docs", Tags: []string{"chat"},
				Description: "A greeting prompt with a description long enough that the table has to shorten it"},
			{Name: "quiver__old", Type: api.EntryTypeTool, Version: "0.9.0", Deprecated: true, Description: "Legacy"},
		},
		Pagination: api.Pagination{Total: 2, Limit: 50, Offset: 0},
		Metadata:   api.DiscoveryMetadata{TotalTools: 1, TotalPrompts: 1, TotalEntries: 2},
	}
}

func TestNewFormatter(t *testing.T) {
	for _, format := range []OutputFormat{"", FormatTable, FormatJSON, FormatYAML} {
		f, err := NewFormatter(Options{Format: format})
		require.NoError(t, err, format)
		assert.NotNil(t, f)
	}
	_, err := NewFormatter(Options{Format: "xml"})
	assert.Error(t, err)
}

func TestTableFormatter_Discovery(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(Options{}).FormatDiscovery(&buf, sampleResult()))

	out := buf.String()
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "quiver__greet")
	assert.Contains(t, out, "quiver__old (deprecated)")
	assert.Contains(t, out, "...")
	assert.NotContains(t, out, "has to shorten it")
	assert.Contains(t, out, "Showing 1-2 of 2 (tools: 1, prompts: 1)")
}

func TestTableFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewTableFormatter(Options{}).FormatDiscovery(&buf, api.DiscoveryResult{}))
	assert.Contains(t, buf.String(), "No entries found")

	buf.Reset()
	require.NoError(t, NewTableFormatter(Options{}).FormatCategories(&buf, nil))
	assert.Contains(t, buf.String(), "No categories found")
}

func TestTableFormatter_Statistics(t *testing.T) {
	var buf bytes.Buffer
	err := NewTableFormatter(Options{}).FormatStatistics(&buf, api.Statistics{
		TotalEntries: 3, Tools: 2, Prompts: 1, AverageVersion: "1.1.0", MaxVersion: "2.0.0",
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Average version")
	assert.Contains(t, buf.String(), "1.1.0")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(Options{}).FormatDiscovery(&buf, sampleResult()))

	var out api.DiscoveryResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	require.Len(t, out.Entries, 2)
	assert.Equal(t, "quiver__greet", out.Entries[0].Name)
	assert.True(t, out.Entries[1].Deprecated)
	assert.Equal(t, sampleResult().Pagination, out.Pagination)

	buf.Reset()
	require.NoError(t, NewJSONFormatter(Options{}).FormatCategories(&buf, nil))
	assert.JSONEq(t, `{"categories": [], "count": 0}`, buf.String())
}

func TestYAMLFormatter_UsesJSONFieldNames(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter(Options{}).FormatStatistics(&buf, api.Statistics{TotalEntries: 4, AverageVersion: "1.0.0"}))

	var out map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, 4, out["totalEntries"])
	assert.Equal(t, "1.0.0", out["averageVersion"])
}
