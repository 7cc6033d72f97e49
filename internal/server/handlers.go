package server

import (
	"context"
	"encoding/json"
	"fmt"

	"quiver/internal/api"
	"quiver/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// callOptions carries the MCP session identity into the execution context.
func callOptions(ctx context.Context) api.CallOptions {
	opts := api.CallOptions{}
	if session := server.ClientSessionFromContext(ctx); session != nil {
		opts.Metadata = map[string]interface{}{"sessionId": session.SessionID()}
	}
	return opts
}

func (s *Server) toolHandler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, span := s.tracer.Start(ctx, "tools/call",
			trace.WithAttributes(attribute.String("mcp.tool.name", name)))
		defer span.End()

		if !s.toolManager.isActive(name) {
			return nil, fmt.Errorf("tool '%s' is no longer available", name)
		}

		result, err := s.registry.ExecuteTool(ctx, name, req.GetArguments(), callOptions(ctx))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if api.IsNotFound(err) {
				return nil, err
			}
			return mcp.NewToolResultError(err.Error()), nil
		}

		r, err := toCallToolResult(result)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		return r, nil
	}
}

func (s *Server) promptHandler(name string) server.PromptHandlerFunc {
	return func(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		ctx, span := s.tracer.Start(ctx, "prompts/get",
			trace.WithAttributes(attribute.String("mcp.prompt.name", name)))
		defer span.End()

		if !s.promptManager.isActive(name) {
			return nil, fmt.Errorf("prompt %s is no longer available", name)
		}

		args := make(map[string]interface{}, len(req.Params.Arguments))
		for k, v := range req.Params.Arguments {
			args[k] = v
		}

		result, err := s.registry.ExecutePrompt(ctx, name, args, callOptions(ctx))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, fmt.Errorf("prompt retrieval failed: %w", err)
		}

		description := ""
		if entry, ok := s.registry.GetPrompt(name); ok {
			description = entry.Description
		}
		r, err := toGetPromptResult(result, description)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		return r, nil
	}
}

// toCallToolResult converts a handler result into a tool result. Strings
// become text content and other values are encoded as JSON text.
func toCallToolResult(result interface{}) (*mcp.CallToolResult, error) {
	switch r := result.(type) {
	case *mcp.CallToolResult:
		return r, nil
	case string:
		return mcp.NewToolResultText(r), nil
	case nil:
		return mcp.NewToolResultText(""), nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		logging.Warn("Server", "Tool result of type %T is not JSON encodable: %v", result, err)
		return nil, fmt.Errorf("failed to encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// toGetPromptResult converts a handler result into prompt messages. Plain
// values become a single user message.
func toGetPromptResult(result interface{}, description string) (*mcp.GetPromptResult, error) {
	var text string
	switch r := result.(type) {
	case *mcp.GetPromptResult:
		return r, nil
	case []mcp.PromptMessage:
		return mcp.NewGetPromptResult(description, r), nil
	case string:
		text = r
	default:
		data, err := json.Marshal(r)
		if err != nil {
			return nil, fmt.Errorf("failed to encode prompt result: %w", err)
		}
		text = string(data)
	}
	return mcp.NewGetPromptResult(description, []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(text)),
	}), nil
}
