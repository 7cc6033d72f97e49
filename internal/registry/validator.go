package registry

import (
	"fmt"
	"strings"

	"quiver/internal/api"
)

// ValidationResult is the outcome of validating a candidate name.
type ValidationResult struct {
	Valid  bool
	Errors []string

	// Duplicate is set when the duplicate rule tripped. ExistingType names
	// the variant already holding the name.
	Duplicate    bool
	ExistingType api.EntryType
}

// Validate applies the registration rules to name. existing reports whether a
// name is already taken and under which type. Validate never mutates state.
func Validate(name string, existing func(name string) (api.EntryType, bool), cfg api.RegistryConfig) ValidationResult {
	result := ValidationResult{Valid: true}
	if !cfg.ValidateOnRegister {
		return result
	}

	if !strings.HasPrefix(name, cfg.NamePrefix) {
		result.Errors = append(result.Errors, fmt.Sprintf("name %q must start with prefix %q", name, cfg.NamePrefix))
	}

	if !cfg.AllowDuplicateNames && existing != nil {
		if t, ok := existing(name); ok {
			result.Duplicate = true
			result.ExistingType = t
			result.Errors = append(result.Errors, fmt.Sprintf("%s %q already exists", t, name))
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

// Err converts a failed result into the matching typed error. A tripped
// duplicate rule wins over other failures.
func (r ValidationResult) Err(name string) error {
	if r.Valid {
		return nil
	}
	if r.Duplicate {
		return &api.DuplicateEntryError{Name: name, ExistingType: r.ExistingType}
	}
	return api.NewValidationError(name, r.Errors...)
}

// checkStructure reports problems that make an entry unusable regardless of
// configuration.
func checkStructure(name, description string, handler api.Handler, cfg api.RegistryConfig) []string {
	var reasons []string
	if strings.TrimSpace(name) == "" {
		reasons = append(reasons, "name is required")
	}
	if handler == nil {
		reasons = append(reasons, "handler is required")
	}
	if cfg.ValidateOnRegister && strings.TrimSpace(description) == "" {
		reasons = append(reasons, "description is required")
	}
	return reasons
}
