package schema

import (
	"fmt"
	"strconv"
	"time"

	v1 "github.com/audit-lab/audit-service/internal/api/v1"
)

// Kind is the declared type of a record field. It drives value coercion and
// the predicate shape used when filtering on the field.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindTime
	KindBool
	// KindStringList fields are filtered by overlap, never by equality or prefix.
	KindStringList
	// KindOpaque fields are passed through untouched and cannot be queried.
	KindOpaque
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindTime:
		return "datetime"
	case KindBool:
		return "boolean"
	case KindStringList:
		return "string list"
	case KindOpaque:
		return "opaque"
	default:
		return "unknown"
	}
}

// Field is a statically declared column of a category.
type Field struct {
	Name     string
	Column   string
	Kind     Kind
	Required bool
}

// Queryable reports whether the field can be used as a filter or groupby key.
func (f Field) Queryable() bool {
	return f.Kind != KindOpaque
}

// Coerce converts one raw query-string value into the field's Go type:
// string, int64, time.Time (from unix seconds) or bool. List fields take
// their elements verbatim.
func (f Field) Coerce(raw string) (interface{}, error) {
	switch f.Kind {
	case KindString, KindStringList:
		return raw, nil
	case KindInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, f.invalid(raw, fmt.Errorf("%w: expected %s", ErrInvalidFieldValue, f.Kind))
		}
		return n, nil
	case KindTime:
		sec, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, f.invalid(raw, fmt.Errorf("%w: expected unix seconds", ErrInvalidFieldValue))
		}
		ts, err := v1.TimeFromUnix(sec)
		if err != nil {
			return nil, f.invalid(raw, fmt.Errorf("%w: %v", ErrInvalidFieldValue, err))
		}
		return ts, nil
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, f.invalid(raw, fmt.Errorf("%w: expected %s", ErrInvalidFieldValue, f.Kind))
		}
		return b, nil
	default:
		return nil, f.invalid(raw, fmt.Errorf("%w: %s fields cannot be queried", ErrInvalidFieldValue, f.Kind))
	}
}

func (f Field) invalid(raw string, err error) *FieldError {
	return &FieldError{Field: f.Name, Value: raw, Err: err}
}

// FormatValue renders a field value for a JSON response.
func FormatValue(v interface{}) interface{} {
	if ts, ok := v.(time.Time); ok {
		return ts.UTC().Format(v1.TimestampLayout)
	}
	return v
}
