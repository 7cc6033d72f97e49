package metatools

import (
	"context"
	"fmt"

	"quiver/internal/api"
	"quiver/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
)

// callOptions forwards the caller identity of the outer meta-tool call.
func callOptions(ctx context.Context) api.CallOptions {
	ec, ok := api.ExecutionContextFrom(ctx)
	if !ok {
		return api.CallOptions{}
	}
	metadata := map[string]interface{}{"parentRequestId": ec.RequestID}
	for k, v := range ec.Metadata {
		metadata[k] = v
	}
	return api.CallOptions{UserID: ec.UserID, Metadata: metadata}
}

func objectArg(args map[string]interface{}, key string) (map[string]interface{}, error) {
	raw, ok := args[key]
	if !ok || raw == nil {
		return map[string]interface{}{}, nil
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%s must be a JSON object", key)
	}
	return m, nil
}

func (p *Provider) handleDiscover(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	q, err := queryFromArgs(args)
	if err != nil {
		return errorResult(err.Error()), nil
	}

	jsonData, err := p.formatters.FormatDiscoveryJSON(p.registry.GetDiscoveryEntries(q))
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(jsonData), nil
}

func (p *Provider) handleDescribe(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	name, _ := args["name"].(string)

	entry, ok := p.registry.GetTool(name)
	if !ok {
		entry, ok = p.registry.GetPrompt(name)
	}
	if !ok {
		return errorResult(api.NewEntryNotFoundError(name).Error()), nil
	}

	jsonData, err := p.formatters.FormatDescribeJSON(DescribeResponse{
		Entry:      entry.Snapshot(),
		Executable: true,
		Advertised: !entry.Deprecated,
	})
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(jsonData), nil
}

func (p *Provider) handleStatistics(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	jsonData, err := p.formatters.FormatStatisticsJSON(p.registry.GetStatistics())
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(jsonData), nil
}

func (p *Provider) handleCategories(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	jsonData, err := p.formatters.FormatCategoriesJSON(p.registry.GetCategories())
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(jsonData), nil
}

func (p *Provider) handleCallTool(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	name, _ := args["name"].(string)
	if name == p.Name(ToolCallTool) {
		return errorResult("call_tool cannot call itself"), nil
	}
	toolArgs, err := objectArg(args, "arguments")
	if err != nil {
		return errorResult(err.Error()), nil
	}

	logging.Debug("Metatools", "Indirect call to %s", name)
	opts := callOptions(ctx)
	result, err := p.registry.ExecuteTool(ctx, name, toolArgs, opts)
	if err != nil {
		return errorResult(fmt.Sprintf("Tool execution failed: %v", err)), nil
	}

	// Execution results that are already MCP results pass through unchanged.
	if r, ok := result.(*mcp.CallToolResult); ok {
		return r, nil
	}

	resp := CallToolResponse{Name: name, Result: result}
	if parent, ok := opts.Metadata["parentRequestId"].(string); ok {
		resp.RequestID = parent
	}
	jsonData, err := p.formatters.FormatCallResultJSON(resp)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(jsonData), nil
}

func (p *Provider) handleGetPrompt(ctx context.Context, args map[string]interface{}) (interface{}, error) {
	name, _ := args["name"].(string)
	promptArgs, err := objectArg(args, "arguments")
	if err != nil {
		return errorResult(err.Error()), nil
	}

	result, err := p.registry.ExecutePrompt(ctx, name, promptArgs, callOptions(ctx))
	if err != nil {
		return errorResult(fmt.Sprintf("Prompt retrieval failed: %v", err)), nil
	}

	jsonData, err := p.formatters.FormatPromptJSON(result)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return textResult(jsonData), nil
}

// textResult creates a successful text result.
func textResult(text string) *mcp.CallToolResult {
	return mcp.NewToolResultText(text)
}

// errorResult creates an error result.
func errorResult(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}
