package api

import (
	"context"
)

// ToolRegistration bundles everything needed to register one tool.
type ToolRegistration struct {
	Definition ToolDefinition
	Handler    Handler
	Metadata   EntryMetadata
}

// PromptRegistration bundles everything needed to register one prompt.
type PromptRegistration struct {
	Definition PromptDefinition
	Handler    Handler
	Metadata   EntryMetadata
}

// EntrySource provides a live view of registered entries. Implementations
// return copies; callers may hold them without further synchronization.
type EntrySource interface {
	Tools() []Entry
	Prompts() []Entry
}

// RegistryHandler is the capability surface the protocol server, metatools
// and CLI consume. The registry façade implements it.
type RegistryHandler interface {
	RegisterTool(def ToolDefinition, handler Handler, meta EntryMetadata) error
	RegisterPrompt(def PromptDefinition, handler Handler, meta EntryMetadata) error
	RegisterAll(tools []ToolRegistration, prompts []PromptRegistration) error
	RegisterAllAtomic(tools []ToolRegistration, prompts []PromptRegistration) error
	ReplaceTool(previous string, def ToolDefinition, handler Handler, meta EntryMetadata) error
	ReplacePrompt(previous string, def PromptDefinition, handler Handler, meta EntryMetadata) error
	Unregister(name string) error

	GetTool(name string) (Entry, bool)
	GetPrompt(name string) (Entry, bool)

	ExecuteTool(ctx context.Context, name string, args map[string]interface{}, opts CallOptions) (interface{}, error)
	ExecutePrompt(ctx context.Context, name string, args map[string]interface{}, opts CallOptions) (interface{}, error)

	GetToolDefinitions() []ToolDefinition
	GetPromptDefinitions() []PromptDefinition

	GetDiscoveryMetadata() DiscoveryMetadata
	GetDiscoveryEntries(query DiscoveryQuery) DiscoveryResult
	Search(text string) DiscoveryResult
	GetByTags(tags ...string) DiscoveryResult
	GetByAuthor(author string) DiscoveryResult
	GetRecent(days int) DiscoveryResult
	GetDeprecated() DiscoveryResult
	GetCategories() []string
	GetStatistics() Statistics
	GetStats() Stats

	Clear()
	AddEventListener(l EventListener)
	RemoveEventListener(l EventListener)
	Config() RegistryConfig
}
