package metatools

import (
	"context"
	"encoding/json"
	"testing"

	"quiver/internal/api"
	"quiver/internal/registry"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRegistry(t *testing.T) (*registry.Registry, *Provider) {
	t.Helper()
	reg := registry.NewDefault()
	p := NewProvider(reg)
	require.NoError(t, p.Register())

	require.NoError(t, reg.RegisterTool(
		api.ToolDefinition{Name: "quiver__echo", Description: "Echo the message"},
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			ec, _ := api.ExecutionContextFrom(ctx)
			return map[string]interface{}{"message": args["message"], "user": ec.UserID}, nil
		},
		api.EntryMetadata{Tags: []string{"util"}, Author: "alice"},
	))
	require.NoError(t, reg.RegisterTool(
		api.ToolDefinition{Name: "quiver__old", Description: "Legacy tool"},
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return "legacy", nil
		},
		api.EntryMetadata{Deprecated: true, DeprecationReason: "use quiver__echo"},
	))
	require.NoError(t, reg.RegisterPrompt(
		api.PromptDefinition{Name: "quiver__greet", Description: "Greeting"},
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return mcp.NewGetPromptResult("Greeting", []mcp.PromptMessage{
				mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent("Hello "+args["name"].(string))),
			}), nil
		},
		api.EntryMetadata{Tags: []string{"chat"}},
	))
	return reg, p
}

func call(t *testing.T, reg *registry.Registry, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	out, err := reg.ExecuteTool(context.Background(), name, args, api.CallOptions{UserID: "bob"})
	require.NoError(t, err)
	res, ok := out.(*mcp.CallToolResult)
	require.True(t, ok, "expected *mcp.CallToolResult, got %T", out)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	return text.Text
}

func TestRegister_AllMetaToolsPrefixedAndTagged(t *testing.T) {
	reg, p := setupRegistry(t)

	for _, base := range []string{ToolDiscover, ToolDescribe, ToolStatistics, ToolCategories, ToolCallTool, ToolGetPrompt} {
		entry, ok := reg.GetTool(p.Name(base))
		require.True(t, ok, base)
		assert.True(t, entry.HasTag(MetaTag))
		assert.Equal(t, "1.0.0", entry.Version.String())
	}

	// Registering twice fails atomically on the first duplicate.
	err := p.Register()
	require.Error(t, err)
	assert.True(t, api.IsDuplicate(err))
}

func TestDiscover(t *testing.T) {
	reg, p := setupRegistry(t)

	tests := []struct {
		name      string
		args      map[string]interface{}
		wantNames []string
		wantErr   bool
	}{
		{
			name:      "by tag",
			args:      map[string]interface{}{"tags": []interface{}{"util"}},
			wantNames: []string{"quiver__echo"},
		},
		{
			name:      "prompts only",
			args:      map[string]interface{}{"type": "prompt"},
			wantNames: []string{"quiver__greet"},
		},
		{
			name:      "deprecated",
			args:      map[string]interface{}{"deprecated": true},
			wantNames: []string{"quiver__old"},
		},
		{
			name:      "search and paginate",
			args:      map[string]interface{}{"search": "greet", "limit": float64(1)},
			wantNames: []string{"quiver__greet"},
		},
		{
			name:    "invalid type",
			args:    map[string]interface{}{"type": "resource"},
			wantErr: true,
		},
		{
			name:    "invalid timestamp",
			args:    map[string]interface{}{"updatedSince": "yesterday"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, reg, p.Name(ToolDiscover), tt.args)
			if tt.wantErr {
				assert.True(t, res.IsError)
				return
			}
			require.False(t, res.IsError, resultText(t, res))

			var out api.DiscoveryResult
			require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
			names := make([]string, len(out.Entries))
			for i, e := range out.Entries {
				names[i] = e.Name
			}
			assert.Equal(t, tt.wantNames, names)
			assert.Equal(t, 9, out.Metadata.TotalEntries)
		})
	}
}

func TestDescribe(t *testing.T) {
	reg, p := setupRegistry(t)

	res := call(t, reg, p.Name(ToolDescribe), map[string]interface{}{"name": "quiver__old"})
	require.False(t, res.IsError)

	var out DescribeResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
	assert.Equal(t, "quiver__old", out.Entry.Name)
	assert.True(t, out.Entry.Deprecated)
	assert.Equal(t, "use quiver__echo", out.Entry.DeprecationReason)
	assert.False(t, out.Advertised)
	assert.True(t, out.Executable)

	res = call(t, reg, p.Name(ToolDescribe), map[string]interface{}{"name": "quiver__missing"})
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "not found")
}

func TestDescribe_MissingNameFailsValidation(t *testing.T) {
	reg, p := setupRegistry(t)

	_, err := reg.ExecuteTool(context.Background(), p.Name(ToolDescribe), map[string]interface{}{}, api.CallOptions{})
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))
}

func TestStatisticsAndCategories(t *testing.T) {
	reg, p := setupRegistry(t)

	res := call(t, reg, p.Name(ToolStatistics), nil)
	var st api.Statistics
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &st))
	assert.Equal(t, 9, st.TotalEntries)
	assert.Equal(t, 8, st.Tools)
	assert.Equal(t, 1, st.Prompts)
	assert.Equal(t, 1, st.Deprecated)

	res = call(t, reg, p.Name(ToolCategories), nil)
	var cats struct {
		Categories []string `json:"categories"`
		Count      int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &cats))
	assert.Equal(t, []string{"chat", "meta", "util"}, cats.Categories)
	assert.Equal(t, 3, cats.Count)
}

func TestCallTool(t *testing.T) {
	reg, p := setupRegistry(t)

	t.Run("forwards arguments and caller", func(t *testing.T) {
		res := call(t, reg, p.Name(ToolCallTool), map[string]interface{}{
			"name":      "quiver__echo",
			"arguments": map[string]interface{}{"message": "hi"},
		})
		require.False(t, res.IsError, resultText(t, res))

		var out CallToolResponse
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &out))
		assert.Equal(t, "quiver__echo", out.Name)
		assert.NotEmpty(t, out.RequestID)
		assert.Equal(t, map[string]interface{}{"message": "hi", "user": "bob"}, out.Result)
	})

	t.Run("reaches deprecated tools", func(t *testing.T) {
		res := call(t, reg, p.Name(ToolCallTool), map[string]interface{}{"name": "quiver__old"})
		require.False(t, res.IsError)
		assert.Contains(t, resultText(t, res), "legacy")
	})

	t.Run("unknown tool", func(t *testing.T) {
		res := call(t, reg, p.Name(ToolCallTool), map[string]interface{}{"name": "quiver__nope"})
		assert.True(t, res.IsError)
		assert.Contains(t, resultText(t, res), "not found")
	})

	t.Run("rejects self call", func(t *testing.T) {
		res := call(t, reg, p.Name(ToolCallTool), map[string]interface{}{"name": p.Name(ToolCallTool)})
		assert.True(t, res.IsError)
	})

	t.Run("rejects non-object arguments", func(t *testing.T) {
		res := call(t, reg, p.Name(ToolCallTool), map[string]interface{}{"name": "quiver__echo", "arguments": "x"})
		assert.True(t, res.IsError)
	})
}

func TestGetPrompt(t *testing.T) {
	reg, p := setupRegistry(t)

	res := call(t, reg, p.Name(ToolGetPrompt), map[string]interface{}{
		"name":      "quiver__greet",
		"arguments": map[string]interface{}{"name": "Ada"},
	})
	require.False(t, res.IsError, resultText(t, res))

	var msgs []struct {
		Role    string `json:"role"`
		Content struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "text", msgs[0].Content.Type)
	assert.Equal(t, "Hello Ada", msgs[0].Content.Text)

	res = call(t, reg, p.Name(ToolGetPrompt), map[string]interface{}{"name": "quiver__echo"})
	assert.True(t, res.IsError)
}

func TestFormatPromptJSON_StringResult(t *testing.T) {
	out, err := NewFormatters().FormatPromptJSON("plain text")
	require.NoError(t, err)
	assert.Contains(t, out, `"text": "plain text"`)
	assert.Contains(t, out, `"role": "user"`)
}

func TestQueryFromArgs(t *testing.T) {
	q, err := queryFromArgs(map[string]interface{}{
		"type":         "tool",
		"tags":         "util",
		"author":       "alice",
		"versionRange": "^1.0.0",
		"limit":        float64(10),
		"offset":       float64(5),
		"sortBy":       "updated",
		"sortOrder":    "desc",
		"updatedSince": "2026-01-02T15:04:05Z",
	})
	require.NoError(t, err)
	assert.Equal(t, api.EntryTypeTool, q.Type)
	assert.Equal(t, []string{"util"}, q.Tags)
	assert.Equal(t, "alice", q.Author)
	assert.Equal(t, "^1.0.0", q.VersionRange)
	assert.Equal(t, 10, q.Limit)
	assert.Equal(t, 5, q.Offset)
	assert.Equal(t, api.SortByUpdated, q.SortBy)
	assert.Equal(t, api.SortDesc, q.SortOrder)
	require.NotNil(t, q.UpdatedSince)
	assert.Nil(t, q.Deprecated)

	_, err = queryFromArgs(map[string]interface{}{"sortBy": "size"})
	assert.Error(t, err)
	_, err = queryFromArgs(map[string]interface{}{"sortOrder": "up"})
	assert.Error(t, err)
}
