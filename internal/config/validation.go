package config

import (
	"fmt"
	"strings"

	"quiver/pkg/logging"
)

// ValidationError represents a validation error with context
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (ve ValidationError) Error() string {
	if ve.Field == "" {
		return ve.Message
	}
	return fmt.Sprintf("field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for multiple validation errors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}

	var messages []string
	for _, err := range ve {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))
}

// HasErrors returns true if there are any validation errors
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// Add adds a new validation error
func (ve *ValidationErrors) Add(field, message string, value ...interface{}) {
	var val interface{}
	if len(value) > 0 {
		val = value[0]
	}
	*ve = append(*ve, ValidationError{
		Field:   field,
		Value:   val,
		Message: message,
	})
}

// ValidateOneOf checks that value is one of the allowed values
func ValidateOneOf(field, value string, allowed []string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

// Validate checks the configuration and returns ValidationErrors, or nil.
func (c QuiverConfig) Validate() error {
	var errs ValidationErrors

	if c.Registry.ValidateOnRegister && strings.TrimSpace(c.Registry.NamePrefix) == "" {
		errs.Add("registry.namePrefix", "is required when validateOnRegister is enabled")
	}
	if c.Registry.MaxRetries < 0 {
		errs.Add("registry.maxRetries", "must not be negative", c.Registry.MaxRetries)
	}

	if err := ValidateOneOf("server.transport", c.Server.Transport,
		[]string{MCPTransportStdio, MCPTransportStreamableHTTP, MCPTransportSSE}); err != nil {
		errs = append(errs, err.(ValidationError))
	}
	if c.Server.Transport != MCPTransportStdio && (c.Server.Port < 1 || c.Server.Port > 65535) {
		errs.Add("server.port", "must be between 1 and 65535", c.Server.Port)
	}

	if c.Catalog.Watch && c.Catalog.Dir == "" {
		errs.Add("catalog.dir", "is required when catalog.watch is enabled")
	}
	if c.Catalog.Debounce < 0 {
		errs.Add("catalog.debounce", "must not be negative", c.Catalog.Debounce)
	}

	if c.Metrics.Enabled && c.Metrics.Address == "" {
		errs.Add("metrics.address", "is required when metrics are enabled")
	}

	if c.Tracing.Enabled {
		if err := ValidateOneOf("tracing.exporter", c.Tracing.Exporter, []string{"stdout", "none"}); err != nil {
			errs = append(errs, err.(ValidationError))
		}
		if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
			errs.Add("tracing.sampleRate", "must be between 0 and 1", c.Tracing.SampleRate)
		}
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs.Add("logging.level", err.Error(), c.Logging.Level)
	}
	if err := ValidateOneOf("logging.format", c.Logging.Format, []string{"text", "json"}); err != nil {
		errs = append(errs, err.(ValidationError))
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
