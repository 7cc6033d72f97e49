package metatools

import (
	"quiver/internal/api"
	"quiver/internal/version"

	"github.com/mark3labs/mcp-go/mcp"
)

// Provider exposes discovery and indirect execution as ordinary registry
// tools. It holds no state beyond the registry it serves.
type Provider struct {
	registry   api.RegistryHandler
	formatters *Formatters
	prefix     string
}

// NewProvider creates a meta-tools provider for reg.
func NewProvider(reg api.RegistryHandler) *Provider {
	return &Provider{
		registry:   reg,
		formatters: NewFormatters(),
		prefix:     reg.Config().NamePrefix,
	}
}

// Name returns the registered name of a meta-tool.
func (p *Provider) Name(base string) string {
	return p.prefix + base
}

// Register adds every meta-tool to the registry in one atomic batch.
func (p *Provider) Register() error {
	return p.registry.RegisterAllAtomic(p.Registrations(), nil)
}

// Registrations returns the registry registrations for every meta-tool.
func (p *Provider) Registrations() []api.ToolRegistration {
	v := version.VersionInfo{Major: 1, Minor: 0, Patch: 0}
	meta := func() api.EntryMetadata {
		return api.EntryMetadata{
			Version: &v,
			Author:  "quiver",
			Tags:    []string{MetaTag},
		}
	}

	regs := []api.ToolRegistration{
		{
			Definition: p.definition(mcp.NewTool(p.Name(ToolDiscover),
				mcp.WithDescription("Search, filter, sort and paginate registered tools and prompts"),
				mcp.WithString("type", mcp.Description("Restrict to tool, prompt or all"), mcp.Enum("tool", "prompt", "all")),
				mcp.WithArray("tags", mcp.Description("Match entries carrying any of these tags"), mcp.WithStringItems()),
				mcp.WithString("author", mcp.Description("Exact author match")),
				mcp.WithBoolean("deprecated", mcp.Description("Match the deprecated flag")),
				mcp.WithString("versionRange", mcp.Description("Version range such as ^1.2.0 or >=1.0.0 <2.0.0")),
				mcp.WithString("search", mcp.Description("Case-insensitive text matched against name, description and tags")),
				mcp.WithString("updatedSince", mcp.Description("RFC 3339 timestamp; keep entries updated at or after it")),
				mcp.WithNumber("limit", mcp.Description("Page size (default 50)")),
				mcp.WithNumber("offset", mcp.Description("Entries to skip")),
				mcp.WithString("sortBy", mcp.Enum("name", "version", "created", "updated")),
				mcp.WithString("sortOrder", mcp.Enum("asc", "desc")),
			)),
			Handler:  p.handleDiscover,
			Metadata: meta(),
		},
		{
			Definition: p.definition(mcp.NewTool(p.Name(ToolDescribe),
				mcp.WithDescription("Get the full description of a tool or prompt, including deprecated ones"),
				mcp.WithString("name", mcp.Required(), mcp.Description("Entry name")),
			)),
			Handler:  p.handleDescribe,
			Metadata: meta(),
		},
		{
			Definition: p.definition(mcp.NewTool(p.Name(ToolStatistics),
				mcp.WithDescription("Aggregate counts and version figures for the registry"),
			)),
			Handler:  p.handleStatistics,
			Metadata: meta(),
		},
		{
			Definition: p.definition(mcp.NewTool(p.Name(ToolCategories),
				mcp.WithDescription("List the distinct tags in use"),
			)),
			Handler:  p.handleCategories,
			Metadata: meta(),
		},
		{
			Definition: p.definition(mcp.NewTool(p.Name(ToolCallTool),
				mcp.WithDescription("Execute a tool by name, including deprecated tools that are no longer advertised"),
				mcp.WithString("name", mcp.Required(), mcp.Description("Name of the tool to call")),
				mcp.WithObject("arguments", mcp.Description("Arguments to pass to the tool (as JSON object)")),
			)),
			Handler:  p.handleCallTool,
			Metadata: meta(),
		},
		{
			Definition: p.definition(mcp.NewTool(p.Name(ToolGetPrompt),
				mcp.WithDescription("Render a prompt by name, including deprecated prompts that are no longer advertised"),
				mcp.WithString("name", mcp.Required(), mcp.Description("Name of the prompt to get")),
				mcp.WithObject("arguments", mcp.Description("Arguments to pass to the prompt (as JSON object)")),
			)),
			Handler:  p.handleGetPrompt,
			Metadata: meta(),
		},
	}

	for i := range regs {
		if req := regs[i].Definition.InputSchema.Required; len(req) > 0 {
			regs[i].Metadata.InputValidation = requireStrings(req)
		}
	}
	return regs
}

func (p *Provider) definition(tool mcp.Tool) api.ToolDefinition {
	return api.ToolDefinition{
		Name:        tool.Name,
		Description: tool.Description,
		InputSchema: tool.InputSchema,
	}
}

// GetFormatters returns the formatters used by this provider.
func (p *Provider) GetFormatters() *Formatters {
	return p.formatters
}

func requireStrings(names []string) api.InputValidator {
	return func(args map[string]interface{}) bool {
		for _, name := range names {
			if s, ok := args[name].(string); !ok || s == "" {
				return false
			}
		}
		return true
	}
}
