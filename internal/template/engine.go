package template

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Engine renders catalog templates with text/template and the sprig
// function library. Missing keys are errors; callers pre-fill optional
// arguments before rendering.
type Engine struct {
	funcs template.FuncMap

	// Pattern to match variable references like {{ .name }} or {{ .name | upper }}
	variablePattern *regexp.Regexp
}

// New creates a new template engine
func New() *Engine {
	return &Engine{
		funcs:           sprig.TxtFuncMap(),
		variablePattern: regexp.MustCompile(`\{\{-?\s*\.([a-zA-Z_][a-zA-Z0-9_]*)`),
	}
}

// Compile parses text so syntax errors surface at load time.
func (e *Engine) Compile(name, text string) (*template.Template, error) {
	tmpl, err := template.New(name).Funcs(e.funcs).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	return tmpl, nil
}

// Render compiles and executes text against data.
func (e *Engine) Render(name, text string, data map[string]interface{}) (string, error) {
	tmpl, err := e.Compile(name, text)
	if err != nil {
		return "", err
	}
	return Execute(tmpl, data)
}

// Execute runs a compiled template against data.
func Execute(tmpl *template.Template, data map[string]interface{}) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

// Replace renders every string found in value, recursing into maps and slices.
func (e *Engine) Replace(value interface{}, data map[string]interface{}) (interface{}, error) {
	switch v := value.(type) {
	case string:
		if !strings.Contains(v, "{{") {
			return v, nil
		}
		return e.Render("value", v, data)
	case map[string]interface{}:
		return e.replaceMap(v, data)
	case []interface{}:
		return e.replaceSlice(v, data)
	default:
		// Non-templatable types are returned as-is
		return value, nil
	}
}

func (e *Engine) replaceMap(m map[string]interface{}, data map[string]interface{}) (map[string]interface{}, error) {
	result := make(map[string]interface{}, len(m))
	for key, value := range m {
		replaced, err := e.Replace(value, data)
		if err != nil {
			return nil, fmt.Errorf("error in key '%s': %w", key, err)
		}
		result[key] = replaced
	}
	return result, nil
}

func (e *Engine) replaceSlice(s []interface{}, data map[string]interface{}) ([]interface{}, error) {
	result := make([]interface{}, len(s))
	for i, value := range s {
		replaced, err := e.Replace(value, data)
		if err != nil {
			return nil, fmt.Errorf("error at index %d: %w", i, err)
		}
		result[i] = replaced
	}
	return result, nil
}

// ExtractVariables returns the sorted set of top-level variables referenced in value.
func (e *Engine) ExtractVariables(value interface{}) []string {
	variables := make(map[string]bool)
	e.extractVariablesRecursive(value, variables)

	result := make([]string, 0, len(variables))
	for name := range variables {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

func (e *Engine) extractVariablesRecursive(value interface{}, variables map[string]bool) {
	switch v := value.(type) {
	case string:
		for _, match := range e.variablePattern.FindAllStringSubmatch(v, -1) {
			if len(match) >= 2 {
				variables[match[1]] = true
			}
		}
	case map[string]interface{}:
		for _, val := range v {
			e.extractVariablesRecursive(val, variables)
		}
	case []interface{}:
		for _, val := range v {
			e.extractVariablesRecursive(val, variables)
		}
	}
}

// ValidateContext ensures all referenced variables are present in data
func (e *Engine) ValidateContext(value interface{}, data map[string]interface{}) error {
	var missing []string
	for _, name := range e.ExtractVariables(value) {
		if _, ok := data[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required variables: %s", strings.Join(missing, ", "))
	}
	return nil
}
