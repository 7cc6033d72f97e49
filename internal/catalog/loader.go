package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"quiver/pkg/logging"

	"gopkg.in/yaml.v3"
)

// LoadError ties a failure to the catalog file that caused it.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadErrors collects every per-file failure of a directory load.
type LoadErrors []*LoadError

func (e LoadErrors) Error() string {
	if len(e) == 1 {
		return e[0].Error()
	}
	msgs := make([]string, 0, len(e))
	for _, le := range e {
		msgs = append(msgs, le.Error())
	}
	return fmt.Sprintf("%d catalog errors:\n  %s", len(e), strings.Join(msgs, "\n  "))
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (e LoadErrors) Unwrap() []error {
	out := make([]error, 0, len(e))
	for _, le := range e {
		out = append(out, le)
	}
	return out
}

// IsCatalogFile reports whether path has a YAML extension.
func IsCatalogFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadFile reads and validates a single catalog file. Unknown fields are rejected.
func LoadFile(path string) (Definition, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	var def Definition
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return Definition{}, fmt.Errorf("failed to parse YAML from %s: %w", path, err)
	}
	def.Path = path
	def.Response = normalize(def.Response)
	if def.InputSchema != nil {
		for k, v := range def.InputSchema.Properties {
			def.InputSchema.Properties[k] = normalize(v)
		}
	}

	if err := def.Validate(); err != nil {
		return Definition{}, err
	}

	logging.Debug("Catalog", "Loaded %s %s from %s", def.Kind, def.Name, path)
	return def, nil
}

// LoadDir loads every catalog file below dir in lexical order. Files that fail
// are reported in the returned LoadErrors while the rest are still returned.
// A missing directory yields no definitions and no error.
func LoadDir(dir string) ([]Definition, error) {
	if dir == "" {
		return nil, nil
	}
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		logging.Warn("Catalog", "Catalog directory does not exist: %s", dir)
		return nil, nil
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsCatalogFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk catalog directory: %w", err)
	}
	sort.Strings(paths)

	var (
		defs []Definition
		errs LoadErrors
	)
	for _, path := range paths {
		def, err := LoadFile(path)
		if err != nil {
			errs = append(errs, &LoadError{Path: path, Err: err})
			continue
		}
		defs = append(defs, def)
	}

	logging.Info("Catalog", "Loaded %d definitions from %s", len(defs), dir)
	if len(errs) > 0 {
		return defs, errs
	}
	return defs, nil
}

// normalize converts yaml.v3 map[string]interface{} trees so nested values
// can be rendered and JSON encoded uniformly.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []interface{}:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	default:
		return v
	}
}
