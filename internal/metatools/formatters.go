package metatools

import (
	"encoding/json"
	"fmt"

	"quiver/internal/api"

	"github.com/mark3labs/mcp-go/mcp"
)

// Formatters renders meta-tool responses as indented JSON. It is stateless
// and safe for concurrent use.
type Formatters struct{}

// NewFormatters creates a new formatters instance.
func NewFormatters() *Formatters {
	return &Formatters{}
}

func marshal(v interface{}, what string) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format %s: %w", what, err)
	}
	return string(data), nil
}

// FormatDiscoveryJSON formats a discovery page.
//
// Output format:
//
//	{
//	  "entries": [{"name": "quiver__x", "type": "tool", ...}],
//	  "pagination": {"total": 1, "limit": 50, "offset": 0, "hasMore": false},
//	  "metadata": {"totalTools": 1, ...}
//	}
func (f *Formatters) FormatDiscoveryJSON(res api.DiscoveryResult) (string, error) {
	return marshal(res, "discovery result")
}

// FormatDescribeJSON formats a describe response.
func (f *Formatters) FormatDescribeJSON(resp DescribeResponse) (string, error) {
	return marshal(resp, "entry")
}

// FormatStatisticsJSON formats registry statistics.
func (f *Formatters) FormatStatisticsJSON(st api.Statistics) (string, error) {
	return marshal(st, "statistics")
}

// FormatCategoriesJSON formats the tag list.
func (f *Formatters) FormatCategoriesJSON(categories []string) (string, error) {
	return marshal(map[string]interface{}{"categories": categories, "count": len(categories)}, "categories")
}

// FormatCallResultJSON formats the result of an indirect tool call. Results
// that are already MCP tool results keep their IsError flag and content.
func (f *Formatters) FormatCallResultJSON(resp CallToolResponse) (string, error) {
	return marshal(resp, "tool result")
}

// promptMessageResponse is a serialized prompt message for JSON output.
type promptMessageResponse struct {
	Role    mcp.Role        `json:"role"`
	Content json.RawMessage `json:"content"`
}

// FormatPromptJSON formats prompt output. Non-MCP results are rendered as a
// single user message.
func (f *Formatters) FormatPromptJSON(result interface{}) (string, error) {
	var messages []mcp.PromptMessage
	switch r := result.(type) {
	case *mcp.GetPromptResult:
		messages = r.Messages
	case string:
		messages = []mcp.PromptMessage{mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(r))}
	default:
		data, err := json.Marshal(r)
		if err != nil {
			return "", fmt.Errorf("failed to format prompt: %w", err)
		}
		messages = []mcp.PromptMessage{mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(string(data)))}
	}

	out := make([]promptMessageResponse, len(messages))
	for i, msg := range messages {
		content, err := serializePromptContent(msg.Content)
		if err != nil {
			return "", fmt.Errorf("failed to serialize prompt content: %w", err)
		}
		out[i] = promptMessageResponse{Role: msg.Role, Content: content}
	}
	return marshal(out, "messages")
}

// serializePromptContent serializes prompt message content to JSON.
func serializePromptContent(content mcp.Content) (json.RawMessage, error) {
	if textContent, ok := mcp.AsTextContent(content); ok {
		return json.Marshal(map[string]interface{}{
			"type": "text",
			"text": textContent.Text,
		})
	}
	if imageContent, ok := mcp.AsImageContent(content); ok {
		return json.Marshal(map[string]interface{}{
			"type":     "image",
			"mimeType": imageContent.MIMEType,
			"dataSize": len(imageContent.Data),
		})
	}
	if resource, ok := mcp.AsEmbeddedResource(content); ok {
		return json.Marshal(map[string]interface{}{
			"type":     "embeddedResource",
			"resource": resource.Resource,
		})
	}
	return json.Marshal(content)
}
