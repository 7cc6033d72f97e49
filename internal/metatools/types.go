package metatools

import (
	"fmt"
	"time"

	"quiver/internal/api"
)

// Meta-tool base names. They are registered with the registry's name prefix.
const (
	// ToolDiscover runs a discovery query.
	ToolDiscover = "discover"

	// ToolDescribe returns the full projection of a single entry.
	ToolDescribe = "describe"

	// ToolStatistics returns aggregate registry statistics.
	ToolStatistics = "statistics"

	// ToolCategories lists the distinct tags in use.
	ToolCategories = "categories"

	// ToolCallTool executes any tool by name, including deprecated ones.
	ToolCallTool = "call_tool"

	// ToolGetPrompt renders any prompt by name, including deprecated ones.
	ToolGetPrompt = "get_prompt"
)

// MetaTag marks every meta-tool so discovery can tell them apart.
const MetaTag = "meta"

// DescribeResponse is the response structure of the describe meta-tool.
type DescribeResponse struct {
	Entry      api.DiscoveryEntry `json:"entry"`
	Executable bool               `json:"executable"`
	Advertised bool               `json:"advertised"`
}

// CallToolResponse wraps a call_tool result.
type CallToolResponse struct {
	Name      string      `json:"name"`
	RequestID string      `json:"requestId,omitempty"`
	Result    interface{} `json:"result"`
}

// queryFromArgs builds a discovery query from meta-tool arguments. Unknown
// enum values are rejected so callers get a precise message.
func queryFromArgs(args map[string]interface{}) (api.DiscoveryQuery, error) {
	var q api.DiscoveryQuery

	if v, ok := args["type"].(string); ok && v != "" {
		switch api.EntryType(v) {
		case api.EntryTypeTool, api.EntryTypePrompt, api.EntryTypeAll:
			q.Type = api.EntryType(v)
		default:
			return q, fmt.Errorf("type must be one of tool, prompt, all")
		}
	}
	q.Tags = stringSlice(args["tags"])
	q.Author, _ = args["author"].(string)
	if v, ok := args["deprecated"].(bool); ok {
		q.Deprecated = &v
	}
	q.VersionRange, _ = args["versionRange"].(string)
	q.SearchText, _ = args["search"].(string)
	if v, ok := args["updatedSince"].(string); ok && v != "" {
		ts, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return q, fmt.Errorf("updatedSince must be an RFC 3339 timestamp: %w", err)
		}
		q.UpdatedSince = &ts
	}
	q.Limit = intArg(args["limit"])
	q.Offset = intArg(args["offset"])

	if v, ok := args["sortBy"].(string); ok && v != "" {
		switch api.SortField(v) {
		case api.SortByName, api.SortByVersion, api.SortByCreated, api.SortByUpdated:
			q.SortBy = api.SortField(v)
		default:
			return q, fmt.Errorf("sortBy must be one of name, version, created, updated")
		}
	}
	if v, ok := args["sortOrder"].(string); ok && v != "" {
		switch api.SortOrder(v) {
		case api.SortAsc, api.SortDesc:
			q.SortOrder = api.SortOrder(v)
		default:
			return q, fmt.Errorf("sortOrder must be asc or desc")
		}
	}
	return q, nil
}

func stringSlice(v interface{}) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	}
	return nil
}

// intArg accepts JSON numbers, which arrive as float64.
func intArg(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	}
	return 0
}
