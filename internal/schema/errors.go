package schema

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownField is returned when a filter or groupby names a field the category lacks.
	ErrUnknownField = errors.New("unknown field")
	// ErrInvalidFieldValue is returned when a raw value cannot be coerced to the field's kind.
	ErrInvalidFieldValue = errors.New("invalid field value")
)

// FieldError describes a rejected field reference in a query.
type FieldError struct {
	Category string
	Field    string
	Value    string
	Err      error
}

func (e *FieldError) Error() string {
	if errors.Is(e.Err, ErrUnknownField) {
		return fmt.Sprintf("'%s' is not allowed on category '%s'", e.Field, e.Category)
	}
	if e.Value != "" {
		return fmt.Sprintf("invalid value '%s' for field '%s': %v", e.Value, e.Field, e.Err)
	}
	return fmt.Sprintf("field '%s': %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ValidationDetailer surfaces structured validation details for API error responses.
type ValidationDetailer interface {
	Details() map[string]interface{}
}

// Details returns the offending field and value.
func (e *FieldError) Details() map[string]interface{} {
	d := map[string]interface{}{"field": e.Field}
	if e.Value != "" {
		d["value"] = e.Value
	}
	return d
}
