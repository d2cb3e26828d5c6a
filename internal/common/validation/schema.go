// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"strings"

	"course-workers/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

// FieldError is one schema violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Result lists the violations found in a document.
type Result struct {
	Errors []FieldError `json:"errors,omitempty"`
}

func (r *Result) Valid() bool {
	return len(r.Errors) == 0
}

// Messages renders each violation as "field: message".
func (r *Result) Messages() []string {
	out := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		out[i] = e.Field + ": " + e.Message
	}
	return out
}

// Check validates document against a JSON schema held as a decoded map.
// An empty schema accepts everything.
func Check(schema map[string]interface{}, document interface{}) (*Result, error) {
	if len(schema) == 0 {
		return &Result{}, nil
	}

	res, err := gojsonschema.Validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(document))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	result := &Result{}
	for _, desc := range res.Errors() {
		result.Errors = append(result.Errors, FieldError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Type:    desc.Type(),
		})
	}
	return result, nil
}

// Validate is Check reported as a non-retryable invalid input error.
func Validate(schema map[string]interface{}, document interface{}) error {
	result, err := Check(schema, document)
	if err != nil {
		return errors.NewInvalidInputError(err.Error())
	}
	if !result.Valid() {
		return errors.NewInvalidInputError(strings.Join(result.Messages(), "; ")).
			WithMetadata("validationErrors", result.Errors)
	}
	return nil
}

// CompileSchema reports whether schema is itself a usable JSON schema.
func CompileSchema(schema map[string]interface{}) error {
	if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema)); err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}
	return nil
}
