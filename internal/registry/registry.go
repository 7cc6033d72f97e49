package registry

import (
	"context"
	"sort"
	"time"

	"quiver/internal/api"
	"quiver/internal/discovery"

	"github.com/google/uuid"
)

// Registry is the capability registry façade. It composes validation,
// storage, event notification and discovery behind one object and is safe
// for concurrent use.
type Registry struct {
	cfg      api.RegistryConfig
	notifier *notifier
	store    *store
	engine   *discovery.Engine
}

var _ api.RegistryHandler = (*Registry)(nil)

// Option configures a Registry.
type Option func(*options)

type options struct {
	now        func() time.Time
	newID      func() string
	engineOpts []discovery.Option
}

// WithClock overrides the clock used for timestamps and recency queries.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithRequestIDs overrides the execution request ID generator.
func WithRequestIDs(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

// WithDiscoveryOptions passes options through to the discovery engine.
func WithDiscoveryOptions(opts ...discovery.Option) Option {
	return func(o *options) { o.engineOpts = append(o.engineOpts, opts...) }
}

// New creates an empty registry with the given configuration.
func New(cfg api.RegistryConfig, opts ...Option) *Registry {
	o := options{
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(&o)
	}

	n := &notifier{}
	engineOpts := append([]discovery.Option{discovery.WithClock(o.now)}, o.engineOpts...)
	return &Registry{
		cfg:      cfg,
		notifier: n,
		store:    newStore(cfg, n, o.now, o.newID),
		engine:   discovery.New(engineOpts...),
	}
}

// NewDefault creates a registry with api.DefaultRegistryConfig.
func NewDefault(opts ...Option) *Registry {
	return New(api.DefaultRegistryConfig(), opts...)
}

// Config returns the configuration the registry was built with.
func (r *Registry) Config() api.RegistryConfig { return r.cfg }

// RegisterTool registers or, where policy allows, overwrites a tool.
func (r *Registry) RegisterTool(def api.ToolDefinition, handler api.Handler, meta api.EntryMetadata) error {
	return r.store.register(toolCandidate(def, handler, meta))
}

// RegisterPrompt registers or, where policy allows, overwrites a prompt.
func (r *Registry) RegisterPrompt(def api.PromptDefinition, handler api.Handler, meta api.EntryMetadata) error {
	return r.store.register(promptCandidate(def, handler, meta))
}

// ReplaceTool registers def as the successor of the entry named previous.
// With the same name it overwrites in place, keeping the creation time even
// when duplicates are disallowed; with a new name previous is removed. If def
// is rejected the previous entry stays registered.
func (r *Registry) ReplaceTool(previous string, def api.ToolDefinition, handler api.Handler, meta api.EntryMetadata) error {
	return r.store.replace(previous, toolCandidate(def, handler, meta))
}

// ReplacePrompt is ReplaceTool for prompts.
func (r *Registry) ReplacePrompt(previous string, def api.PromptDefinition, handler api.Handler, meta api.EntryMetadata) error {
	return r.store.replace(previous, promptCandidate(def, handler, meta))
}

func candidates(tools []api.ToolRegistration, prompts []api.PromptRegistration) []candidate {
	cs := make([]candidate, 0, len(tools)+len(prompts))
	for _, t := range tools {
		cs = append(cs, toolCandidate(t.Definition, t.Handler, t.Metadata))
	}
	for _, p := range prompts {
		cs = append(cs, promptCandidate(p.Definition, p.Handler, p.Metadata))
	}
	return cs
}

// RegisterAll registers tools then prompts sequentially, stopping at the
// first failure. Registrations before the failure remain committed.
func (r *Registry) RegisterAll(tools []api.ToolRegistration, prompts []api.PromptRegistration) error {
	return r.store.registerAll(candidates(tools, prompts))
}

// RegisterAllAtomic validates the whole batch first and commits it only if
// every item is accepted.
func (r *Registry) RegisterAllAtomic(tools []api.ToolRegistration, prompts []api.PromptRegistration) error {
	return r.store.registerAllAtomic(candidates(tools, prompts))
}

// Unregister removes one tool or prompt. Executions that already started
// run to completion.
func (r *Registry) Unregister(name string) error {
	return r.store.unregister(name)
}

// GetTool returns a copy of the named tool.
func (r *Registry) GetTool(name string) (api.Entry, bool) {
	return r.store.get(api.EntryTypeTool, name)
}

// GetPrompt returns a copy of the named prompt.
func (r *Registry) GetPrompt(name string) (api.Entry, bool) {
	return r.store.get(api.EntryTypePrompt, name)
}

// ExecuteTool invokes the named tool's handler with args and returns its
// result unchanged.
func (r *Registry) ExecuteTool(ctx context.Context, name string, args map[string]interface{}, opts api.CallOptions) (interface{}, error) {
	return r.store.execute(ctx, api.EntryTypeTool, name, args, opts)
}

// ExecutePrompt invokes the named prompt's handler with args and returns its
// result unchanged.
func (r *Registry) ExecutePrompt(ctx context.Context, name string, args map[string]interface{}, opts api.CallOptions) (interface{}, error) {
	return r.store.execute(ctx, api.EntryTypePrompt, name, args, opts)
}

// GetToolDefinitions lists every non-deprecated tool, ordered by name.
func (r *Registry) GetToolDefinitions() []api.ToolDefinition {
	defs := make([]api.ToolDefinition, 0)
	for _, e := range r.store.Tools() {
		if !e.Deprecated {
			defs = append(defs, e.ToolDefinition())
		}
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// GetPromptDefinitions lists every non-deprecated prompt, ordered by name.
func (r *Registry) GetPromptDefinitions() []api.PromptDefinition {
	defs := make([]api.PromptDefinition, 0)
	for _, e := range r.store.Prompts() {
		if !e.Deprecated {
			defs = append(defs, e.PromptDefinition())
		}
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// GetDiscoveryMetadata summarizes the whole registry.
func (r *Registry) GetDiscoveryMetadata() api.DiscoveryMetadata {
	return r.engine.Metadata(r.store)
}

// GetDiscoveryEntries runs query against the current registry contents.
func (r *Registry) GetDiscoveryEntries(query api.DiscoveryQuery) api.DiscoveryResult {
	return r.engine.Discover(r.store, query)
}

// Search runs a free-text query.
func (r *Registry) Search(text string) api.DiscoveryResult {
	return r.engine.Search(r.store, text)
}

// GetByTags returns entries carrying any of tags.
func (r *Registry) GetByTags(tags ...string) api.DiscoveryResult {
	return r.engine.ByTags(r.store, tags...)
}

// GetByAuthor returns entries registered by author.
func (r *Registry) GetByAuthor(author string) api.DiscoveryResult {
	return r.engine.ByAuthor(r.store, author)
}

// GetRecent returns entries created or updated in the last days days.
func (r *Registry) GetRecent(days int) api.DiscoveryResult {
	return r.engine.Recent(r.store, days)
}

// GetDeprecated returns every deprecated entry.
func (r *Registry) GetDeprecated() api.DiscoveryResult {
	return r.engine.Deprecated(r.store)
}

// GetCategories returns the sorted set of distinct tags.
func (r *Registry) GetCategories() []string {
	return r.engine.Categories(r.store)
}

// GetStatistics returns aggregate counts and version figures.
func (r *Registry) GetStatistics() api.Statistics {
	return r.engine.Statistics(r.store)
}

// GetStats returns entry counts.
func (r *Registry) GetStats() api.Stats {
	return r.store.stats()
}

// Clear removes every entry. Listeners stay registered.
func (r *Registry) Clear() {
	r.store.clear()
}

// AddEventListener subscribes l to registry events. Listeners are matched by
// identity, so pass a pointer (api.NewListener returns one); adding the same
// listener twice has no effect.
func (r *Registry) AddEventListener(l api.EventListener) {
	r.notifier.add(l)
}

// RemoveEventListener unsubscribes l. Unknown listeners are ignored.
func (r *Registry) RemoveEventListener(l api.EventListener) {
	r.notifier.remove(l)
}
