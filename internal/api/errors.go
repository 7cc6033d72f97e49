package api

import (
	"errors"
	"fmt"
	"strings"

	"quiver/internal/version"
)

// NotFoundError represents a lookup or execution against a name that is not
// registered under the requested entry type.
//
// The error includes the resource type and name for precise error reporting
// and supports a custom message for specific use cases.
type NotFoundError struct {
	// ResourceType is the entry type that was searched ("tool", "prompt", "entry").
	ResourceType string

	// ResourceName is the name that could not be resolved.
	ResourceName string

	// Message overrides the default message when set.
	Message string
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s not found", e.ResourceType, e.ResourceName)
}

// IsNotFound checks if an error is a NotFoundError using error unwrapping.
//
// Example:
//
//	if _, err := reg.ExecuteTool(ctx, name, args, api.CallOptions{}); api.IsNotFound(err) {
//	    return mcp.NewToolResultError(err.Error()), nil
//	}
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	return errors.As(err, &notFoundErr)
}

// NewNotFoundError creates a new NotFoundError with the specified resource type and name.
func NewNotFoundError(resourceType, resourceName string) *NotFoundError {
	return &NotFoundError{
		ResourceType: resourceType,
		ResourceName: resourceName,
	}
}

// NewToolNotFoundError creates a NotFoundError for a missing tool.
func NewToolNotFoundError(name string) *NotFoundError {
	return NewNotFoundError(string(EntryTypeTool), name)
}

// NewPromptNotFoundError creates a NotFoundError for a missing prompt.
func NewPromptNotFoundError(name string) *NotFoundError {
	return NewNotFoundError(string(EntryTypePrompt), name)
}

// NewEntryNotFoundError creates a NotFoundError for a name missing from both maps.
func NewEntryNotFoundError(name string) *NotFoundError {
	return NewNotFoundError("entry", name)
}

// ValidationError reports why a candidate entry, or a call's arguments, were rejected.
type ValidationError struct {
	// Name is the entry the validation ran against.
	Name string

	// Reasons lists every failed rule in evaluation order.
	Reasons []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Reasons) == 0 {
		return fmt.Sprintf("validation failed for %s", e.Name)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Name, strings.Join(e.Reasons, "; "))
}

// NewValidationError creates a ValidationError for name with the given reasons.
func NewValidationError(name string, reasons ...string) *ValidationError {
	return &ValidationError{Name: name, Reasons: reasons}
}

// IsValidation checks if an error is a ValidationError.
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}

// DuplicateEntryError is returned when a name is already registered and the
// registry does not allow duplicates.
type DuplicateEntryError struct {
	Name         string
	ExistingType EntryType
}

// Error implements the error interface for DuplicateEntryError.
func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.ExistingType, e.Name)
}

// IsDuplicate checks if an error is a DuplicateEntryError.
func IsDuplicate(err error) bool {
	var dupErr *DuplicateEntryError
	return errors.As(err, &dupErr)
}

// IsVersion reports whether err is a malformed version or version range error.
func IsVersion(err error) bool {
	return version.IsError(err)
}
