package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"quiver/internal/api"
	"quiver/internal/registry"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const promptYAML = `kind: prompt
name: quiver__summarize
description: Summarize a piece of text
version: 1.2.0
author: docs-team
tags: [text, summary]
arguments:
  - name: text
    description: Text to summarize
    required: true
  - name: style
    default: brief
messages:
  - role: user
    content: "Summarize ({{ .style }}): {{ .text | trunc 10 }}"
`

const toolYAML = `kind: tool
name: quiver__greet
description: Greet someone
tags: [demo]
inputSchema:
  properties:
    name:
      type: string
      description: Who to greet
    punctuation:
      type: string
      default: "!"
  required: [name]
response: "Hello {{ .name }}{{ .punctuation }}"
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "summarize.yaml", promptYAML)

	def, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, KindPrompt, def.Kind)
	assert.Equal(t, "quiver__summarize", def.Name)
	assert.Equal(t, path, def.Path)
	require.Len(t, def.Arguments, 2)
	assert.True(t, def.Arguments[0].Required)

	meta := def.Metadata()
	require.NotNil(t, meta.Version)
	assert.Equal(t, "1.2.0", meta.Version.String())
	assert.Equal(t, []string{"text", "summary"}, meta.Tags)
	require.NotNil(t, meta.InputValidation)
	assert.False(t, meta.InputValidation(map[string]interface{}{}))
	assert.False(t, meta.InputValidation(map[string]interface{}{"text": ""}))
	assert.True(t, meta.InputValidation(map[string]interface{}{"text": "x"}))
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown kind", "kind: resource\nname: quiver__x\ndescription: d\n", "kind must be"},
		{"missing description", "kind: tool\nname: quiver__x\nresponse: ok\n", "description is required"},
		{"bad version", "kind: tool\nname: quiver__x\ndescription: d\nversion: one\nresponse: ok\n", "invalid version"},
		{"prompt without messages", "kind: prompt\nname: quiver__x\ndescription: d\n", "at least one message"},
		{"bad role", "kind: prompt\nname: quiver__x\ndescription: d\nmessages:\n  - role: system\n    content: hi\n", "invalid role"},
		{"undeclared required property", "kind: tool\nname: quiver__x\ndescription: d\ninputSchema:\n  required: [a]\nresponse: ok\n", "not declared"},
		{"unknown field", "kind: tool\nname: quiver__x\ndescription: d\nresponse: ok\nextra: 1\n", "extra"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "def.yaml", tt.content)
			_, err := LoadFile(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadDir_CollectsErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", toolYAML)
	writeFile(t, dir, "b.yml", "kind: nope\n")
	writeFile(t, dir, "notes.txt", "ignored")

	defs, err := LoadDir(dir)
	require.Len(t, defs, 1)
	require.Error(t, err)

	var loadErrs LoadErrors
	require.True(t, errors.As(err, &loadErrs))
	require.Len(t, loadErrs, 1)
	assert.Equal(t, filepath.Join(dir, "b.yml"), loadErrs[0].Path)
}

func TestLoadDir_Missing(t *testing.T) {
	defs, err := LoadDir(filepath.Join(t.TempDir(), "absent"))
	assert.NoError(t, err)
	assert.Empty(t, defs)
}

func TestCatalog_RegistersAndRenders(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "summarize.yaml", promptYAML)
	writeFile(t, dir, "greet.yaml", toolYAML)

	reg := registry.NewDefault()
	c := New(reg)
	require.NoError(t, c.LoadDir(dir))

	assert.Equal(t, 2, reg.GetStats().TotalEntries)

	tool, ok := reg.GetTool("quiver__greet")
	require.True(t, ok)
	assert.Equal(t, []string{"name"}, tool.Tool.InputSchema.Required)

	out, err := reg.ExecuteTool(context.Background(), "quiver__greet", map[string]interface{}{"name": "Ada"}, api.CallOptions{})
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada!", out)

	_, err = reg.ExecuteTool(context.Background(), "quiver__greet", map[string]interface{}{}, api.CallOptions{})
	assert.True(t, api.IsValidation(err))

	res, err := reg.ExecutePrompt(context.Background(), "quiver__summarize", map[string]interface{}{"text": "a very long text"}, api.CallOptions{})
	require.NoError(t, err)
	prompt, ok := res.(*mcp.GetPromptResult)
	require.True(t, ok)
	require.Len(t, prompt.Messages, 1)
	assert.Equal(t, mcp.RoleUser, prompt.Messages[0].Role)
	text, ok := prompt.Messages[0].Content.(mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "Summarize (brief): a very lon", text.Text)
}

func TestCatalog_RegistryErrorsAreCollected(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", "kind: tool\nname: noprefix\ndescription: d\nresponse: ok\n")
	writeFile(t, dir, "good.yaml", toolYAML)

	reg := registry.NewDefault()
	err := New(reg).LoadDir(dir)

	require.Error(t, err)
	assert.True(t, api.IsValidation(err))
	assert.Equal(t, 1, reg.GetStats().TotalEntries)
}

func TestCatalog_UndeclaredResponseVariable(t *testing.T) {
	def := Definition{Kind: KindTool, Name: "quiver__x", Description: "d", Response: "{{ .missing }}"}
	err := New(registry.NewDefault()).Apply(def)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "undeclared input")
}

func TestCatalog_ApplyReplacesAndRemove(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "greet.yaml", toolYAML)

	reg := registry.NewDefault()
	c := New(reg)
	require.NoError(t, c.ApplyFile(path))

	writeFile(t, dir, "greet.yaml", `kind: tool
name: quiver__hello
description: Renamed greeting
response: hi
`)
	require.NoError(t, c.ApplyFile(path))

	_, ok := reg.GetTool("quiver__greet")
	assert.False(t, ok, "the old name is unregistered")
	_, ok = reg.GetTool("quiver__hello")
	assert.True(t, ok)
	assert.Equal(t, map[string]string{path: "quiver__hello"}, c.Names())

	require.NoError(t, c.Remove(path))
	assert.Equal(t, 0, reg.GetStats().TotalEntries)
	assert.NoError(t, c.Remove(path), "removing twice is a no-op")
}

func TestCatalog_ReloadKeepsCreatedAt(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	reg := registry.NewDefault(registry.WithClock(func() time.Time { return now }))
	c := New(reg)

	dir := t.TempDir()
	path := writeFile(t, dir, "greet.yaml", toolYAML)
	require.NoError(t, c.ApplyFile(path))
	before, ok := reg.GetTool("quiver__greet")
	require.True(t, ok)

	now = now.Add(time.Hour)
	writeFile(t, dir, "greet.yaml", `kind: tool
name: quiver__greet
description: Greet someone politely
response: hello
`)
	require.NoError(t, c.ApplyFile(path))

	after, ok := reg.GetTool("quiver__greet")
	require.True(t, ok)
	assert.Equal(t, "Greet someone politely", after.Description)
	assert.Equal(t, before.CreatedAt, after.CreatedAt)
	assert.Equal(t, now, after.UpdatedAt)
}

func TestCatalog_RejectedReloadKeepsPreviousEntry(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad prefix", "kind: tool\nname: greet\ndescription: d\nresponse: ok\n"},
		{"taken name", "kind: tool\nname: quiver__other\ndescription: d\nresponse: ok\n"},
		{"version decrease", "kind: tool\nname: quiver__greet\ndescription: d\nversion: 0.1.0\nresponse: ok\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := api.DefaultRegistryConfig()
			cfg.EnforceVersioning = true
			reg := registry.New(cfg)
			c := New(reg)

			dir := t.TempDir()
			path := writeFile(t, dir, "greet.yaml", "kind: tool\nname: quiver__greet\ndescription: d\nversion: 1.0.0\nresponse: ok\n")
			other := writeFile(t, dir, "other.yaml", "kind: tool\nname: quiver__other\ndescription: d\nresponse: ok\n")
			require.NoError(t, c.ApplyFile(path))
			require.NoError(t, c.ApplyFile(other))

			writeFile(t, dir, "greet.yaml", tt.content)
			require.Error(t, c.ApplyFile(path))

			_, ok := reg.GetTool("quiver__greet")
			assert.True(t, ok, "previous entry is still registered")
			assert.Equal(t, "quiver__greet", c.Names()[path])
			assert.Equal(t, 2, reg.GetStats().ToolsCount)
		})
	}
}

func TestWatcher_HotReload(t *testing.T) {
	dir := t.TempDir()
	reg := registry.NewDefault()
	c := New(reg)
	w := NewWatcher(dir, c, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	path := writeFile(t, dir, "greet.yaml", toolYAML)
	require.Eventually(t, func() bool {
		_, ok := reg.GetTool("quiver__greet")
		return ok
	}, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.Remove(path))
	require.Eventually(t, func() bool {
		_, ok := reg.GetTool("quiver__greet")
		return !ok
	}, 5*time.Second, 20*time.Millisecond)
}
