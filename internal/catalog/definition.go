package catalog

import (
	"fmt"
	"strings"

	"quiver/internal/api"
	"quiver/internal/version"

	"github.com/mark3labs/mcp-go/mcp"
)

// Kind selects which registry variant a catalog file produces.
type Kind string

const (
	KindTool   Kind = "tool"
	KindPrompt Kind = "prompt"
)

// Argument is a prompt parameter.
type Argument struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Required    bool   `yaml:"required,omitempty"`
	Default     string `yaml:"default,omitempty"`
}

// Message is one templated prompt message.
type Message struct {
	Role    string `yaml:"role"`
	Content string `yaml:"content"`
}

// Schema is the JSON schema subset accepted for tool inputs.
type Schema struct {
	Properties map[string]interface{} `yaml:"properties,omitempty"`
	Required   []string               `yaml:"required,omitempty"`
}

// Definition is one capability as written in a catalog file.
type Definition struct {
	Kind              Kind     `yaml:"kind"`
	Name              string   `yaml:"name"`
	Description       string   `yaml:"description"`
	Version           string   `yaml:"version,omitempty"`
	Author            string   `yaml:"author,omitempty"`
	Tags              []string `yaml:"tags,omitempty"`
	Deprecated        bool     `yaml:"deprecated,omitempty"`
	DeprecationReason string   `yaml:"deprecationReason,omitempty"`

	// Prompt fields
	Arguments []Argument `yaml:"arguments,omitempty"`
	Messages  []Message  `yaml:"messages,omitempty"`

	// Tool fields
	InputSchema *Schema     `yaml:"inputSchema,omitempty"`
	Response    interface{} `yaml:"response,omitempty"`

	// Path is the file the definition was read from.
	Path string `yaml:"-"`
}

// Validate checks the definition's shape. It does not apply registry
// naming policy; the registry does that on registration.
func (d Definition) Validate() error {
	var reasons []string
	if strings.TrimSpace(d.Name) == "" {
		reasons = append(reasons, "name is required")
	}
	if strings.TrimSpace(d.Description) == "" {
		reasons = append(reasons, "description is required")
	}
	if d.Version != "" {
		if _, err := version.Parse(d.Version); err != nil {
			reasons = append(reasons, err.Error())
		}
	}

	switch d.Kind {
	case KindPrompt:
		if len(d.Messages) == 0 {
			reasons = append(reasons, "prompt requires at least one message")
		}
		for i, m := range d.Messages {
			if m.Role != string(mcp.RoleUser) && m.Role != string(mcp.RoleAssistant) {
				reasons = append(reasons, fmt.Sprintf("message %d has invalid role %q", i, m.Role))
			}
		}
		seen := make(map[string]bool)
		for _, a := range d.Arguments {
			if a.Name == "" {
				reasons = append(reasons, "argument name is required")
			} else if seen[a.Name] {
				reasons = append(reasons, fmt.Sprintf("argument %q declared twice", a.Name))
			}
			seen[a.Name] = true
		}
	case KindTool:
		if d.Response == nil {
			reasons = append(reasons, "tool requires a response")
		}
		if d.InputSchema != nil {
			for _, req := range d.InputSchema.Required {
				if _, ok := d.InputSchema.Properties[req]; !ok {
					reasons = append(reasons, fmt.Sprintf("required property %q is not declared", req))
				}
			}
		}
	default:
		reasons = append(reasons, fmt.Sprintf("kind must be %q or %q, got %q", KindTool, KindPrompt, d.Kind))
	}

	if len(reasons) > 0 {
		return api.NewValidationError(d.Name, reasons...)
	}
	return nil
}

// Metadata converts the definition's descriptive fields to registry metadata.
func (d Definition) Metadata() api.EntryMetadata {
	meta := api.EntryMetadata{
		Author:            d.Author,
		Tags:              d.Tags,
		Deprecated:        d.Deprecated,
		DeprecationReason: d.DeprecationReason,
		InputValidation:   requiredArgs(d.requiredNames()),
	}
	if d.Version != "" {
		if v, err := version.Parse(d.Version); err == nil {
			meta.Version = &v
		}
	}
	return meta
}

// ToolDefinition returns the registry definition of a tool file.
func (d Definition) ToolDefinition() api.ToolDefinition {
	schema := mcp.ToolInputSchema{Type: "object", Properties: map[string]any{}}
	if d.InputSchema != nil {
		for k, v := range d.InputSchema.Properties {
			schema.Properties[k] = v
		}
		schema.Required = append([]string(nil), d.InputSchema.Required...)
	}
	return api.ToolDefinition{Name: d.Name, Description: d.Description, InputSchema: schema}
}

// PromptDefinition returns the registry definition of a prompt file.
func (d Definition) PromptDefinition() api.PromptDefinition {
	args := make([]mcp.PromptArgument, 0, len(d.Arguments))
	for _, a := range d.Arguments {
		args = append(args, mcp.PromptArgument{Name: a.Name, Description: a.Description, Required: a.Required})
	}
	return api.PromptDefinition{Name: d.Name, Description: d.Description, Arguments: args}
}

func (d Definition) requiredNames() []string {
	if d.Kind == KindTool {
		if d.InputSchema == nil {
			return nil
		}
		return d.InputSchema.Required
	}
	var names []string
	for _, a := range d.Arguments {
		if a.Required {
			names = append(names, a.Name)
		}
	}
	return names
}

// templateDefaults returns a blank value for every declared input, overlaid
// with declared defaults.
func (d Definition) templateDefaults() map[string]interface{} {
	out := make(map[string]interface{})
	if d.InputSchema != nil {
		for name, prop := range d.InputSchema.Properties {
			out[name] = ""
			if m, ok := prop.(map[string]interface{}); ok {
				if def, ok := m["default"]; ok {
					out[name] = def
				}
			}
		}
	}
	for _, a := range d.Arguments {
		out[a.Name] = a.Default
	}
	return out
}

func requiredArgs(names []string) api.InputValidator {
	if len(names) == 0 {
		return nil
	}
	required := append([]string(nil), names...)
	return func(args map[string]interface{}) bool {
		for _, name := range required {
			v, ok := args[name]
			if !ok || v == nil {
				return false
			}
			if s, isString := v.(string); isString && s == "" {
				return false
			}
		}
		return true
	}
}
