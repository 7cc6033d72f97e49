package server

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"quiver/internal/api"
	"quiver/internal/config"
	"quiver/internal/registry"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoHandler(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	return args["message"], nil
}

func newTestServer(t *testing.T) (*registry.Registry, *Server) {
	t.Helper()
	reg := registry.NewDefault()
	s := New(reg, config.ServerConfig{Transport: config.MCPTransportStdio}, WithVersion("test"))
	return reg, s
}

func registerTool(t *testing.T, reg *registry.Registry, name string, h api.Handler, meta api.EntryMetadata) {
	t.Helper()
	require.NoError(t, reg.RegisterTool(api.ToolDefinition{Name: name, Description: "test tool"}, h, meta))
}

func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return s.toolHandler(name)(context.Background(), req)
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	return text.Text
}

func TestSync_AdvertisesNonDeprecated(t *testing.T) {
	reg, s := newTestServer(t)
	registerTool(t, reg, "quiver__b", echoHandler, api.EntryMetadata{})
	registerTool(t, reg, "quiver__a", echoHandler, api.EntryMetadata{})
	registerTool(t, reg, "quiver__old", echoHandler, api.EntryMetadata{Deprecated: true})
	require.NoError(t, reg.RegisterPrompt(api.PromptDefinition{Name: "quiver__p", Description: "p"}, echoHandler, api.EntryMetadata{}))

	s.Sync()
	assert.Equal(t, []string{"quiver__a", "quiver__b"}, s.AdvertisedTools())
	assert.Equal(t, []string{"quiver__p"}, s.AdvertisedPrompts())

	require.NoError(t, reg.Unregister("quiver__b"))
	reg.Clear()
	s.Sync()
	assert.Empty(t, s.AdvertisedTools())
	assert.Empty(t, s.AdvertisedPrompts())
}

func TestMonitor_ResyncsOnRegistryEvents(t *testing.T) {
	reg, s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	s.ctx = ctx
	s.startMonitor()
	t.Cleanup(func() {
		cancel()
		s.wg.Wait()
	})

	for _, name := range []string{"quiver__x", "quiver__y", "quiver__z"} {
		registerTool(t, reg, name, echoHandler, api.EntryMetadata{})
	}
	require.Eventually(t, func() bool {
		return len(s.AdvertisedTools()) == 3
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, reg.Unregister("quiver__y"))
	require.Eventually(t, func() bool {
		tools := s.AdvertisedTools()
		return len(tools) == 2 && tools[0] == "quiver__x" && tools[1] == "quiver__z"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestOnRegistryEvent_Coalesces(t *testing.T) {
	_, s := newTestServer(t)
	for i := 0; i < 5; i++ {
		s.onRegistryEvent(api.Event{Type: api.EventToolRegistered})
	}
	assert.Len(t, s.updates, 1)

	<-s.updates
	s.onRegistryEvent(api.Event{Type: api.EventToolExecuted})
	assert.Len(t, s.updates, 0, "execution events do not trigger a resync")
}

func TestToolHandler(t *testing.T) {
	reg, s := newTestServer(t)
	registerTool(t, reg, "quiver__echo", echoHandler, api.EntryMetadata{})
	registerTool(t, reg, "quiver__json", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return map[string]int{"count": 2}, nil
	}, api.EntryMetadata{})
	registerTool(t, reg, "quiver__fail", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return nil, errors.New("backend down")
	}, api.EntryMetadata{})
	registerTool(t, reg, "quiver__raw", func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		return mcp.NewToolResultError("raw failure"), nil
	}, api.EntryMetadata{})
	registerTool(t, reg, "quiver__strict", echoHandler, api.EntryMetadata{
		InputValidation: func(args map[string]interface{}) bool { _, ok := args["message"]; return ok },
	})
	s.Sync()

	t.Run("string result", func(t *testing.T) {
		res, err := callTool(t, s, "quiver__echo", map[string]interface{}{"message": "hi"})
		require.NoError(t, err)
		assert.False(t, res.IsError)
		assert.Equal(t, "hi", textOf(t, res))
	})

	t.Run("structured result is JSON", func(t *testing.T) {
		res, err := callTool(t, s, "quiver__json", nil)
		require.NoError(t, err)
		assert.JSONEq(t, `{"count":2}`, textOf(t, res))
	})

	t.Run("handler error becomes error result", func(t *testing.T) {
		res, err := callTool(t, s, "quiver__fail", nil)
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Equal(t, "backend down", textOf(t, res))
	})

	t.Run("mcp result passes through", func(t *testing.T) {
		res, err := callTool(t, s, "quiver__raw", nil)
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Equal(t, "raw failure", textOf(t, res))
	})

	t.Run("input validation failure", func(t *testing.T) {
		res, err := callTool(t, s, "quiver__strict", map[string]interface{}{})
		require.NoError(t, err)
		assert.True(t, res.IsError)
		assert.Contains(t, textOf(t, res), "input validation failed")
	})

	t.Run("withdrawn tool", func(t *testing.T) {
		require.NoError(t, reg.Unregister("quiver__echo"))
		s.Sync()
		_, err := callTool(t, s, "quiver__echo", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no longer available")
	})
}

func TestPromptHandler(t *testing.T) {
	reg, s := newTestServer(t)
	require.NoError(t, reg.RegisterPrompt(
		api.PromptDefinition{Name: "quiver__greet", Description: "Say hello"},
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return "Hello " + args["name"].(string), nil
		},
		api.EntryMetadata{},
	))
	require.NoError(t, reg.RegisterPrompt(
		api.PromptDefinition{Name: "quiver__broken", Description: "Always fails"},
		func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return nil, errors.New("template error")
		},
		api.EntryMetadata{},
	))
	s.Sync()

	req := mcp.GetPromptRequest{}
	req.Params.Name = "quiver__greet"
	req.Params.Arguments = map[string]string{"name": "Ada"}

	res, err := s.promptHandler("quiver__greet")(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Say hello", res.Description)
	require.Len(t, res.Messages, 1)
	assert.Equal(t, mcp.RoleUser, res.Messages[0].Role)
	text, ok := mcp.AsTextContent(res.Messages[0].Content)
	require.True(t, ok)
	assert.Equal(t, "Hello Ada", text.Text)

	req.Params.Name = "quiver__broken"
	_, err = s.promptHandler("quiver__broken")(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "template error")
}

func TestEndpoint(t *testing.T) {
	tests := []struct {
		transport string
		want      string
	}{
		{config.MCPTransportStdio, "stdio"},
		{config.MCPTransportSSE, "http://localhost:8090/sse"},
		{config.MCPTransportStreamableHTTP, "http://localhost:8090/mcp"},
	}
	for _, tt := range tests {
		t.Run(tt.transport, func(t *testing.T) {
			s := New(registry.NewDefault(), config.ServerConfig{Host: "localhost", Port: 8090, Transport: tt.transport})
			assert.Equal(t, tt.want, s.Endpoint())
		})
	}
}

func TestStartStop(t *testing.T) {
	reg, _ := newTestServer(t)
	registerTool(t, reg, "quiver__echo", echoHandler, api.EntryMetadata{})

	in, out := newPipe(t)
	s := New(reg, config.ServerConfig{Transport: config.MCPTransportStdio}, WithStdio(in, out))

	require.NoError(t, s.Start(context.Background()))
	assert.Error(t, s.Start(context.Background()))
	assert.Equal(t, []string{"quiver__echo"}, s.AdvertisedTools())

	require.NoError(t, s.Stop(context.Background()))
	assert.Error(t, s.Stop(context.Background()))
}

func newPipe(t *testing.T) (io.Reader, io.Writer) {
	t.Helper()
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })
	return pr, io.Discard
}
