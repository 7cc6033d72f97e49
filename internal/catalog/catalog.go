package catalog

import (
	"context"
	"fmt"
	"sync"
	texttemplate "text/template"

	"quiver/internal/api"
	"quiver/internal/template"
	"quiver/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
)

type compiledMessage struct {
	role mcp.Role
	tmpl *texttemplate.Template
}

// Catalog binds catalog files to a registry. It remembers which name each
// file registered so updates and removals touch only that entry.
type Catalog struct {
	registry api.RegistryHandler
	engine   *template.Engine

	mu     sync.Mutex
	byPath map[string]string
}

// New creates a Catalog registering into reg.
func New(reg api.RegistryHandler) *Catalog {
	return &Catalog{
		registry: reg,
		engine:   template.New(),
		byPath:   make(map[string]string),
	}
}

// Names returns the entry names currently owned by catalog files, keyed by path.
func (c *Catalog) Names() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.byPath))
	for k, v := range c.byPath {
		out[k] = v
	}
	return out
}

// LoadDir loads every file in dir and registers it. Per-file failures,
// whether from parsing or registration, are collected into LoadErrors.
func (c *Catalog) LoadDir(dir string) error {
	defs, loadErr := LoadDir(dir)

	var errs LoadErrors
	if le, ok := loadErr.(LoadErrors); ok {
		errs = append(errs, le...)
	} else if loadErr != nil {
		return loadErr
	}

	for _, def := range defs {
		if err := c.Apply(def); err != nil {
			errs = append(errs, &LoadError{Path: def.Path, Err: err})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ApplyFile loads path and registers it.
func (c *Catalog) ApplyFile(path string) error {
	def, err := LoadFile(path)
	if err != nil {
		return err
	}
	return c.Apply(def)
}

// Apply registers def, replacing whatever the same file registered before.
// If def is rejected the file's previous entry stays registered.
func (c *Catalog) Apply(def Definition) error {
	handler, err := c.handlerFor(def)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	prev, ok := c.byPath[def.Path]
	if !ok || def.Path == "" {
		prev = ""
	}

	switch {
	case def.Kind == KindTool && prev != "":
		err = c.registry.ReplaceTool(prev, def.ToolDefinition(), handler, def.Metadata())
	case def.Kind == KindTool:
		err = c.registry.RegisterTool(def.ToolDefinition(), handler, def.Metadata())
	case prev != "":
		err = c.registry.ReplacePrompt(prev, def.PromptDefinition(), handler, def.Metadata())
	default:
		err = c.registry.RegisterPrompt(def.PromptDefinition(), handler, def.Metadata())
	}
	if err != nil {
		if prev != "" {
			logging.Warn("Catalog", "Keeping %s after rejected update of %s: %v", prev, def.Path, err)
		}
		return err
	}

	if def.Path != "" {
		c.byPath[def.Path] = def.Name
	}
	logging.Info("Catalog", "Registered %s %s from %s", def.Kind, def.Name, def.Path)
	return nil
}

// Remove unregisters whatever path registered. Unknown paths are ignored.
func (c *Catalog) Remove(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	name, ok := c.byPath[path]
	if !ok {
		return nil
	}
	delete(c.byPath, path)
	if err := c.registry.Unregister(name); err != nil && !api.IsNotFound(err) {
		return err
	}
	logging.Info("Catalog", "Removed %s (was %s)", name, path)
	return nil
}

func (c *Catalog) handlerFor(def Definition) (api.Handler, error) {
	defaults := def.templateDefaults()

	switch def.Kind {
	case KindPrompt:
		compiled := make([]compiledMessage, 0, len(def.Messages))
		for i, m := range def.Messages {
			tmpl, err := c.engine.Compile(fmt.Sprintf("%s/message/%d", def.Name, i), m.Content)
			if err != nil {
				return nil, err
			}
			compiled = append(compiled, compiledMessage{role: mcp.Role(m.Role), tmpl: tmpl})
		}
		description := def.Description
		return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			data := template.MergeContexts(defaults, args)
			messages := make([]mcp.PromptMessage, 0, len(compiled))
			for _, m := range compiled {
				text, err := template.Execute(m.tmpl, data)
				if err != nil {
					return nil, err
				}
				messages = append(messages, mcp.NewPromptMessage(m.role, mcp.NewTextContent(text)))
			}
			return mcp.NewGetPromptResult(description, messages), nil
		}, nil

	case KindTool:
		for _, name := range c.engine.ExtractVariables(def.Response) {
			if _, ok := defaults[name]; !ok {
				return nil, api.NewValidationError(def.Name, fmt.Sprintf("response references undeclared input %q", name))
			}
		}
		response := def.Response
		return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
			return c.engine.Replace(response, template.MergeContexts(defaults, args))
		}, nil
	}

	return nil, api.NewValidationError(def.Name, fmt.Sprintf("unsupported kind %q", def.Kind))
}
