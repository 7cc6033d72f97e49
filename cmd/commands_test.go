package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"quiver/internal/api"
	"quiver/internal/catalog"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	greetPromptYAML = `kind: prompt
name: quiver__greet
description: Greet someone
version: 1.0.0
tags: [text]
arguments:
  - name: who
    required: true
messages:
  - role: user
    content: "Hello {{ .who }}"
`
	oldToolYAML = `kind: tool
name: quiver__old
description: Superseded echo
version: 0.9.0
tags: [legacy]
deprecated: true
deprecationReason: use quiver__greet
response: ok
`
)

// isolate keeps the default config path and .env lookup away from the
// developer's machine.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
}

func writeCatalog(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func validCatalog(t *testing.T) string {
	return writeCatalog(t, map[string]string{"greet.yaml": greetPromptYAML, "old.yaml": oldToolYAML})
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func listJSON(t *testing.T, args ...string) api.DiscoveryResult {
	t.Helper()
	out, err := execute(t, newListCmd(), append(args, "-o", "json")...)
	require.NoError(t, err)

	var result api.DiscoveryResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	return result
}

func names(entries []api.DiscoveryEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestListCommand(t *testing.T) {
	isolate(t)
	dir := validCatalog(t)

	t.Run("type filter", func(t *testing.T) {
		result := listJSON(t, "--catalog", dir, "--type", "prompt")
		assert.Equal(t, []string{"quiver__greet"}, names(result.Entries))
		assert.Equal(t, 8, result.Metadata.TotalEntries)
	})

	t.Run("paging", func(t *testing.T) {
		result := listJSON(t, "--catalog", dir, "--tag", "meta", "--limit", "2")
		assert.Len(t, result.Entries, 2)
		assert.Equal(t, 6, result.Pagination.Total)
		assert.True(t, result.Pagination.HasMore)
	})

	t.Run("deprecated only", func(t *testing.T) {
		result := listJSON(t, "--catalog", dir, "--deprecated")
		assert.Equal(t, []string{"quiver__old"}, names(result.Entries))
	})

	t.Run("current tools", func(t *testing.T) {
		result := listJSON(t, "--catalog", dir, "--deprecated=false", "--type", "tool")
		assert.Len(t, result.Entries, 6)
		assert.NotContains(t, names(result.Entries), "quiver__old")
	})

	t.Run("version range and sort", func(t *testing.T) {
		result := listJSON(t, "--catalog", dir, "--range", "<1.0.0", "--tag", "legacy", "--tag", "text", "--sort", "version", "--order", "desc")
		assert.Equal(t, []string{"quiver__old"}, names(result.Entries))
	})

	t.Run("table output", func(t *testing.T) {
		out, err := execute(t, newListCmd(), "--catalog", dir, "--type", "prompt")
		require.NoError(t, err)
		assert.Contains(t, out, "quiver__greet")
	})
}

func TestListCommand_RejectsBadFlags(t *testing.T) {
	isolate(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"type", []string{"--type", "resource"}, "invalid --type"},
		{"sort", []string{"--sort", "popularity"}, "invalid --sort"},
		{"order", []string{"--order", "sideways"}, "invalid --order"},
		{"limit", []string{"--limit", "0"}, "--limit must be positive"},
		{"offset", []string{"--offset", "-1"}, "--offset must not be negative"},
		{"output", []string{"-o", "xml"}, "invalid --output"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, newListCmd(), tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestListCommand_SkipsBrokenFiles(t *testing.T) {
	isolate(t)
	dir := writeCatalog(t, map[string]string{"greet.yaml": greetPromptYAML, "broken.yaml": "name: ["})

	result := listJSON(t, "--catalog", dir, "--type", "prompt")
	assert.Equal(t, []string{"quiver__greet"}, names(result.Entries))
}

func TestStatsCommand(t *testing.T) {
	isolate(t)
	dir := validCatalog(t)

	out, err := execute(t, newStatsCmd(), "--catalog", dir, "-o", "json")
	require.NoError(t, err)

	var stats api.Statistics
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 8, stats.TotalEntries)
	assert.Equal(t, 7, stats.Tools)
	assert.Equal(t, 1, stats.Prompts)
	assert.Equal(t, 1, stats.Deprecated)

	out, err = execute(t, newStatsCmd(), "--catalog", dir, "--categories", "-o", "json")
	require.NoError(t, err)

	var cats struct {
		Categories []string `json:"categories"`
		Count      int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &cats))
	assert.Equal(t, []string{"legacy", "meta", "text"}, cats.Categories)
	assert.Equal(t, 3, cats.Count)
}

func TestValidateCommand(t *testing.T) {
	isolate(t)

	t.Run("valid", func(t *testing.T) {
		dir := validCatalog(t)
		out, err := execute(t, newValidateCmd(), "--catalog", dir)
		require.NoError(t, err)
		assert.Contains(t, out, "1 tools, 1 prompts (1 deprecated)")
	})

	t.Run("invalid", func(t *testing.T) {
		dir := writeCatalog(t, map[string]string{
			"greet.yaml": greetPromptYAML,
			"a.yaml":     "name: [",
			"b.yaml":     "kind: tool\nname: noprefix\ndescription: d\nresponse: ok\n",
		})
		_, err := execute(t, newValidateCmd(), "--catalog", dir)
		require.Error(t, err)

		var loadErrs catalog.LoadErrors
		require.ErrorAs(t, err, &loadErrs)
		assert.Len(t, loadErrs, 2)
		assert.Equal(t, ExitCodeCatalogErrors, getExitCode(err))
	})

	t.Run("catalog flag required", func(t *testing.T) {
		_, err := execute(t, newValidateCmd())
		require.Error(t, err)
	})
}

func TestServeCommandFlags(t *testing.T) {
	cmd := newServeCmd()
	for _, name := range []string{"transport", "catalog", "watch"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}
