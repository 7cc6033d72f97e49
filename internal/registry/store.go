package registry

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"quiver/internal/api"
	"quiver/internal/version"
	"quiver/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
)

// record is what the store keeps per name. The handler and validator never
// leave the package.
type record struct {
	entry    api.Entry
	handler  api.Handler
	validate api.InputValidator
}

// candidate is a registration request before it is committed.
type candidate struct {
	entryType   api.EntryType
	name        string
	description string
	tool        *api.ToolSpec
	prompt      *api.PromptSpec
	handler     api.Handler
	meta        api.EntryMetadata
}

func toolCandidate(def api.ToolDefinition, handler api.Handler, meta api.EntryMetadata) candidate {
	schema := api.CloneInputSchema(def.InputSchema)
	if schema.Type == "" {
		schema.Type = "object"
	}
	return candidate{
		entryType:   api.EntryTypeTool,
		name:        def.Name,
		description: def.Description,
		tool:        &api.ToolSpec{InputSchema: schema},
		handler:     handler,
		meta:        meta,
	}
}

func promptCandidate(def api.PromptDefinition, handler api.Handler, meta api.EntryMetadata) candidate {
	return candidate{
		entryType:   api.EntryTypePrompt,
		name:        def.Name,
		description: def.Description,
		prompt:      &api.PromptSpec{Arguments: append([]mcp.PromptArgument(nil), def.Arguments...)},
		handler:     handler,
		meta:        meta,
	}
}

// store holds the tool and prompt maps. Names are unique across both maps.
type store struct {
	mu      sync.RWMutex
	tools   map[string]*record
	prompts map[string]*record

	cfg      api.RegistryConfig
	notifier *notifier
	now      func() time.Time
	newID    func() string
}

func newStore(cfg api.RegistryConfig, n *notifier, now func() time.Time, newID func() string) *store {
	return &store{
		tools:    make(map[string]*record),
		prompts:  make(map[string]*record),
		cfg:      cfg,
		notifier: n,
		now:      now,
		newID:    newID,
	}
}

func (s *store) infof(format string, args ...interface{}) {
	if s.cfg.EnableLogging {
		logging.Info("Registry", format, args...)
	}
}

func (s *store) debugf(format string, args ...interface{}) {
	if s.cfg.EnableLogging {
		logging.Debug("Registry", format, args...)
	}
}

func (s *store) mapFor(t api.EntryType) map[string]*record {
	if t == api.EntryTypePrompt {
		return s.prompts
	}
	return s.tools
}

// lookupAny must be called with mu held.
func (s *store) lookupAny(name string) (*record, bool) {
	if rec, ok := s.tools[name]; ok {
		return rec, true
	}
	rec, ok := s.prompts[name]
	return rec, ok
}

// prepare builds the record c would produce without touching the maps.
// lookup resolves names against the state c will be committed into.
// The entry named exempt does not count towards the duplicate rule.
func (s *store) prepare(c candidate, lookup func(string) (*record, bool), exempt string, now time.Time) (*record, error) {
	if reasons := checkStructure(c.name, c.description, c.handler, s.cfg); len(reasons) > 0 {
		return nil, api.NewValidationError(c.name, reasons...)
	}

	existingType := func(name string) (api.EntryType, bool) {
		if exempt != "" && name == exempt {
			return "", false
		}
		rec, ok := lookup(name)
		if !ok {
			return "", false
		}
		return rec.entry.Type, true
	}
	if err := Validate(c.name, existingType, s.cfg).Err(c.name); err != nil {
		return nil, err
	}

	existing, overwrite := lookup(c.name)

	ver := version.Default
	if overwrite && existing.entry.Type == c.entryType {
		ver = existing.entry.Version
	}
	if c.meta.Version != nil {
		if _, err := version.New(c.meta.Version.Major, c.meta.Version.Minor, c.meta.Version.Patch); err != nil {
			return nil, err
		}
		if overwrite && s.cfg.EnforceVersioning && version.Compare(*c.meta.Version, existing.entry.Version) < 0 {
			return nil, api.NewValidationError(c.name, fmt.Sprintf("version must not decrease: %s is lower than registered %s", *c.meta.Version, existing.entry.Version))
		}
		ver = *c.meta.Version
	}

	entry := api.Entry{
		Name:              c.name,
		Type:              c.entryType,
		Description:       c.description,
		Version:           ver,
		Author:            c.meta.Author,
		Tags:              append([]string{}, c.meta.Tags...),
		Deprecated:        c.meta.Deprecated,
		DeprecationReason: c.meta.DeprecationReason,
		CreatedAt:         now,
		UpdatedAt:         now,
		Tool:              c.tool,
		Prompt:            c.prompt,
	}
	if overwrite {
		entry.CreatedAt = existing.entry.CreatedAt
		if !entry.UpdatedAt.After(existing.entry.UpdatedAt) {
			entry.UpdatedAt = existing.entry.UpdatedAt.Add(time.Nanosecond)
		}
	}

	return &record{entry: entry, handler: c.handler, validate: c.meta.InputValidation}, nil
}

// commit must be called with mu held.
func (s *store) commit(rec *record) {
	name := rec.entry.Name
	delete(s.tools, name)
	delete(s.prompts, name)
	s.mapFor(rec.entry.Type)[name] = rec
}

func (s *store) registered(rec *record) {
	e := rec.entry
	if e.Deprecated && e.DeprecationReason == "" {
		logging.Warn("Registry", "%s %s registered as deprecated without a deprecation reason", e.Type, e.Name)
	}
	s.infof("Registered %s %s (version %s)", e.Type, e.Name, e.Version)
	s.notifier.emit(api.Event{
		Type:      api.RegisteredEvent(e.Type),
		Name:      e.Name,
		EntryType: e.Type,
		Timestamp: e.UpdatedAt,
	})
}

func (s *store) register(c candidate) error {
	s.mu.Lock()
	rec, err := s.prepare(c, s.lookupAny, "", s.now())
	if err != nil {
		s.mu.Unlock()
		logging.Warn("Registry", "Rejected %s %s: %v", c.entryType, c.name, err)
		return err
	}
	s.commit(rec)
	s.mu.Unlock()

	s.registered(rec)
	return nil
}

// registerAll registers candidates in order and stops at the first failure.
// Earlier registrations stay committed.
func (s *store) registerAll(cs []candidate) error {
	for i, c := range cs {
		if err := s.register(c); err != nil {
			return fmt.Errorf("bulk registration stopped at item %d (%s): %w", i, c.name, err)
		}
	}
	return nil
}

// registerAllAtomic validates every candidate against the current state plus
// the earlier candidates of the batch, then commits all of them or none.
func (s *store) registerAllAtomic(cs []candidate) error {
	s.mu.Lock()
	staged := make(map[string]*record, len(cs))
	lookup := func(name string) (*record, bool) {
		if rec, ok := staged[name]; ok {
			return rec, true
		}
		return s.lookupAny(name)
	}

	now := s.now()
	order := make([]*record, 0, len(cs))
	for i, c := range cs {
		rec, err := s.prepare(c, lookup, "", now)
		if err != nil {
			s.mu.Unlock()
			return fmt.Errorf("atomic registration rejected item %d (%s): %w", i, c.name, err)
		}
		staged[c.name] = rec
		order = append(order, rec)
	}
	for _, rec := range order {
		s.commit(rec)
	}
	s.mu.Unlock()

	for _, rec := range order {
		s.registered(rec)
	}
	return nil
}

// replace validates c as the successor of the entry named previous and
// swaps it in under one lock. A same-name successor overwrites in place and
// keeps createdAt; a renamed one removes previous. On failure nothing changes.
func (s *store) replace(previous string, c candidate) error {
	s.mu.Lock()
	old, hadOld := s.lookupAny(previous)
	exempt := ""
	if hadOld {
		exempt = previous
	}
	rec, err := s.prepare(c, s.lookupAny, exempt, s.now())
	if err != nil {
		s.mu.Unlock()
		logging.Warn("Registry", "Rejected replacement of %s by %s %s: %v", previous, c.entryType, c.name, err)
		return err
	}
	renamed := hadOld && previous != c.name
	if renamed {
		delete(s.mapFor(old.entry.Type), previous)
	}
	s.commit(rec)
	s.mu.Unlock()

	if renamed {
		s.infof("Unregistered %s %s", old.entry.Type, previous)
		s.notifier.emit(api.Event{
			Type:      api.UnregisteredEvent(old.entry.Type),
			Name:      previous,
			EntryType: old.entry.Type,
			Timestamp: s.now(),
		})
	}
	s.registered(rec)
	return nil
}

func (s *store) unregister(name string) error {
	s.mu.Lock()
	rec, ok := s.lookupAny(name)
	if !ok {
		s.mu.Unlock()
		return api.NewEntryNotFoundError(name)
	}
	delete(s.mapFor(rec.entry.Type), name)
	s.mu.Unlock()

	s.infof("Unregistered %s %s", rec.entry.Type, name)
	s.notifier.emit(api.Event{
		Type:      api.UnregisteredEvent(rec.entry.Type),
		Name:      name,
		EntryType: rec.entry.Type,
		Timestamp: s.now(),
	})
	return nil
}

func (s *store) get(t api.EntryType, name string) (api.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.mapFor(t)[name]
	if !ok {
		return api.Entry{}, false
	}
	return rec.entry.Clone(), true
}

func (s *store) entries(t api.EntryType) []api.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m := s.mapFor(t)
	out := make([]api.Entry, 0, len(m))
	for _, rec := range m {
		out = append(out, rec.entry.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Tools implements api.EntrySource.
func (s *store) Tools() []api.Entry { return s.entries(api.EntryTypeTool) }

// Prompts implements api.EntrySource.
func (s *store) Prompts() []api.Entry { return s.entries(api.EntryTypePrompt) }

func (s *store) stats() api.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := api.Stats{
		ToolsCount:   len(s.tools),
		PromptsCount: len(s.prompts),
	}
	st.TotalEntries = st.ToolsCount + st.PromptsCount
	for _, m := range []map[string]*record{s.tools, s.prompts} {
		for _, rec := range m {
			if rec.entry.Deprecated {
				st.DeprecatedCount++
			}
		}
	}
	return st
}

func (s *store) clear() {
	s.mu.Lock()
	removed := len(s.tools) + len(s.prompts)
	s.tools = make(map[string]*record)
	s.prompts = make(map[string]*record)
	s.mu.Unlock()

	s.infof("Cleared registry (%d entries removed)", removed)
	s.notifier.emit(api.Event{Type: api.EventRegistryCleared, Timestamp: s.now()})
}

// execute dispatches one call. The lock is released before the handler runs.
func (s *store) execute(ctx context.Context, t api.EntryType, name string, args map[string]interface{}, opts api.CallOptions) (interface{}, error) {
	s.mu.RLock()
	rec, ok := s.mapFor(t)[name]
	var (
		entry    api.Entry
		handler  api.Handler
		validate api.InputValidator
	)
	if ok {
		entry, handler, validate = rec.entry, rec.handler, rec.validate
	}
	s.mu.RUnlock()

	if !ok {
		if t == api.EntryTypePrompt {
			return nil, api.NewPromptNotFoundError(name)
		}
		return nil, api.NewToolNotFoundError(name)
	}

	ec := api.ExecutionContext{
		RequestID: s.newID(),
		StartTime: s.now(),
		UserID:    opts.UserID,
		Metadata:  opts.Metadata,
	}

	if validate != nil && !validate(args) {
		err := api.NewValidationError(name, "input validation failed")
		s.failed(entry, ec, 0, err)
		return nil, err
	}

	if entry.Deprecated {
		reason := entry.DeprecationReason
		if reason == "" {
			reason = "no reason given"
		}
		logging.Warn("Registry", "Executing deprecated %s %s: %s", t, name, reason)
	}

	s.debugf("Executing %s %s (request %s)", t, name, ec.RequestID)
	result, err := invoke(api.WithExecutionContext(ctx, ec), handler, args)
	duration := s.now().Sub(ec.StartTime)
	if err != nil {
		s.failed(entry, ec, duration, err)
		return nil, err
	}

	s.notifier.emit(api.Event{
		Type:      api.ExecutedEvent(t),
		Name:      name,
		EntryType: t,
		Timestamp: s.now(),
		Context:   &ec,
		Duration:  duration,
	})
	return result, nil
}

func (s *store) failed(entry api.Entry, ec api.ExecutionContext, duration time.Duration, err error) {
	logging.Warn("Registry", "%s %s failed (request %s): %v", entry.Type, entry.Name, ec.RequestID, err)
	s.notifier.emit(api.Event{
		Type:      api.FailedEvent(entry.Type),
		Name:      entry.Name,
		EntryType: entry.Type,
		Timestamp: s.now(),
		Context:   &ec,
		Duration:  duration,
		Error:     err.Error(),
	})
}

// invoke runs handler, turning a panic into an error.
func invoke(ctx context.Context, handler api.Handler, args map[string]interface{}) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler(ctx, args)
}
