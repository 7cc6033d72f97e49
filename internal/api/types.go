package api

import (
	"context"
	"time"

	"quiver/internal/version"

	"github.com/mark3labs/mcp-go/mcp"
)

// EntryType discriminates the registry entry variants.
type EntryType string

const (
	// EntryTypeTool marks an invocable tool.
	EntryTypeTool EntryType = "tool"

	// EntryTypePrompt marks a parameterized prompt.
	EntryTypePrompt EntryType = "prompt"

	// EntryTypeAll is only meaningful in queries and matches both variants.
	EntryTypeAll EntryType = "all"
)

// Handler executes a capability. Tools and prompts share this shape; prompt
// handlers typically return *mcp.GetPromptResult or a string. The per-call
// ExecutionContext is available through ExecutionContextFrom(ctx).
type Handler func(ctx context.Context, args map[string]interface{}) (interface{}, error)

// InputValidator is an optional predicate over call arguments. Returning false
// rejects the call before the handler runs.
type InputValidator func(args map[string]interface{}) bool

// ToolDefinition is the public, advertisable description of a tool.
type ToolDefinition struct {
	Name        string              `json:"name"`
	Description string              `json:"description"`
	InputSchema mcp.ToolInputSchema `json:"inputSchema"`
}

// PromptDefinition is the public, advertisable description of a prompt.
type PromptDefinition struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Arguments   []mcp.PromptArgument `json:"arguments,omitempty"`
}

// EntryMetadata carries the optional fields supplied at registration time.
type EntryMetadata struct {
	// Version defaults to 1.0.0 for new entries. On overwrite a nil Version keeps
	// the stored one; the registry never increments versions on its own.
	Version *version.VersionInfo

	Author            string
	Tags              []string
	Deprecated        bool
	DeprecationReason string

	// InputValidation, when set, gates every execution of the entry.
	InputValidation InputValidator
}

// ToolSpec is the tool-specific payload of an Entry.
type ToolSpec struct {
	InputSchema mcp.ToolInputSchema `json:"inputSchema"`
}

// Clone returns a copy of s that shares no maps or slices with it.
func (s ToolSpec) Clone() ToolSpec {
	return ToolSpec{InputSchema: CloneInputSchema(s.InputSchema)}
}

// CloneInputSchema deep-copies the nested maps and slices of schema.
func CloneInputSchema(schema mcp.ToolInputSchema) mcp.ToolInputSchema {
	out := schema
	out.Defs = cloneMap(schema.Defs)
	out.Properties = cloneMap(schema.Properties)
	if schema.Required != nil {
		out.Required = append([]string(nil), schema.Required...)
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	default:
		return v
	}
}

// PromptSpec is the prompt-specific payload of an Entry.
type PromptSpec struct {
	Arguments []mcp.PromptArgument `json:"arguments,omitempty"`
}

// Entry is a registered capability. It is a tagged union: Type selects which
// of Tool or Prompt is populated. Handlers and validation predicates are owned
// by the registry and never appear on Entry values handed to callers.
type Entry struct {
	Name              string              `json:"name"`
	Type              EntryType           `json:"type"`
	Description       string              `json:"description"`
	Version           version.VersionInfo `json:"version"`
	Author            string              `json:"author,omitempty"`
	Tags              []string            `json:"tags"`
	Deprecated        bool                `json:"deprecated"`
	DeprecationReason string              `json:"deprecationReason,omitempty"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`

	Tool   *ToolSpec   `json:"tool,omitempty"`
	Prompt *PromptSpec `json:"prompt,omitempty"`
}

// Clone returns a deep copy of e so callers cannot mutate registry state.
func (e Entry) Clone() Entry {
	out := e
	if e.Tags != nil {
		out.Tags = append([]string(nil), e.Tags...)
	}
	if e.Tool != nil {
		spec := e.Tool.Clone()
		out.Tool = &spec
	}
	if e.Prompt != nil {
		spec := PromptSpec{Arguments: append([]mcp.PromptArgument(nil), e.Prompt.Arguments...)}
		out.Prompt = &spec
	}
	return out
}

// HasTag reports whether e carries tag.
func (e Entry) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ToolDefinition projects a tool entry onto its public definition.
func (e Entry) ToolDefinition() ToolDefinition {
	def := ToolDefinition{Name: e.Name, Description: e.Description}
	if e.Tool != nil {
		def.InputSchema = e.Tool.InputSchema
	}
	if def.InputSchema.Type == "" {
		def.InputSchema.Type = "object"
	}
	return def
}

// PromptDefinition projects a prompt entry onto its public definition.
func (e Entry) PromptDefinition() PromptDefinition {
	def := PromptDefinition{Name: e.Name, Description: e.Description}
	if e.Prompt != nil {
		def.Arguments = e.Prompt.Arguments
	}
	return def
}

// Stats is the cheap registry summary returned by GetStats.
type Stats struct {
	TotalEntries    int `json:"totalEntries"`
	ToolsCount      int `json:"toolsCount"`
	PromptsCount    int `json:"promptsCount"`
	DeprecatedCount int `json:"deprecatedCount"`
}
