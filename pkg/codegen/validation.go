package codegen

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ValidationErrors collects every problem found while validating a value, so
// that a single report names all of them.
type ValidationErrors struct {
	errors []error
}

// NewValidationErrors creates an empty collector.
func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{
		errors: make([]error, 0),
	}
}

// Add adds err to the collection. Nil errors are ignored.
func (ve *ValidationErrors) Add(err error) {
	if err != nil {
		ve.errors = append(ve.errors, err)
	}
}

// AddErrorf adds a formatted error to the collection.
func (ve *ValidationErrors) AddErrorf(format string, args ...any) {
	ve.errors = append(ve.errors, fmt.Errorf(format, args...))
}

// HasErrors returns true if any error was collected.
func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.errors) > 0
}

// Error implements the error interface
func (ve *ValidationErrors) Error() string {
	if len(ve.errors) == 0 {
		return ""
	}

	if len(ve.errors) == 1 {
		return ve.errors[0].Error()
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("validation failed with %d errors:\n", len(ve.errors)))
	for i, err := range ve.errors {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return b.String()
}

// Unwrap returns the collected errors.
func (ve *ValidationErrors) Unwrap() []error {
	return ve.errors
}

// ErrorOrNil returns the collector as an error if it holds any, otherwise nil.
func (ve *ValidationErrors) ErrorOrNil() error {
	if ve.HasErrors() {
		return ve
	}
	return nil
}

// ValidateRequired validates that a string field is not empty
func ValidateRequired(value, fieldName, context string) error {
	if value == "" {
		return fmt.Errorf("%s: %s is required", context, fieldName)
	}
	return nil
}

// ValidateAbsolute validates that a non-empty path field is absolute.
func ValidateAbsolute(path, fieldName, context string) error {
	if path != "" && !filepath.IsAbs(path) {
		return fmt.Errorf("%s: %s must be an absolute path, got %q", context, fieldName, path)
	}
	return nil
}

// Validate checks that the configuration can be handed to an engine. It
// returns a *ConfigurationError naming every missing required field.
func (c *Config) Validate() error {
	const context = "GenerationConfig"

	errs := NewValidationErrors()
	var missing []string

	for _, required := range []struct {
		name  string
		value string
	}{
		{name: "inputSpec", value: c.InputSpec},
		{name: "lang", value: c.Lang},
		{name: "outputDir", value: c.OutputDir},
	} {
		if err := ValidateRequired(required.value, required.name, context); err != nil {
			missing = append(missing, required.name)
			errs.Add(err)
		}
	}

	errs.Add(ValidateAbsolute(c.InputSpec, "inputSpec", context))
	errs.Add(ValidateAbsolute(c.OutputDir, "outputDir", context))
	errs.Add(ValidateAbsolute(c.TemplateDir, "templateDir", context))

	if !errs.HasErrors() {
		return nil
	}

	return &ConfigurationError{Missing: missing, Err: errs}
}
