package format

import (
	"fmt"
	"unicode/utf8"
)

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate checks the structure of a create or update payload.
// Returns a slice of field errors; empty slice means valid.
func Validate(p *Payload, maxValueLength int) []FieldError {
	if p == nil {
		return []FieldError{
			{Field: "value", Message: "value is required"},
			{Field: "active", Message: "active is required"},
		}
	}

	var errs []FieldError

	if p.Value == nil || *p.Value == "" {
		errs = append(errs, FieldError{Field: "value", Message: "value is required"})
	} else if maxValueLength > 0 && utf8.RuneCountInString(*p.Value) > maxValueLength {
		errs = append(errs, FieldError{Field: "value", Message: fmt.Sprintf("value must be at most %d characters", maxValueLength)})
	}

	if p.Active == nil {
		errs = append(errs, FieldError{Field: "active", Message: "active is required"})
	}

	return errs
}
