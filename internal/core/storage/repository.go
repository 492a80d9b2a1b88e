package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	v1 "github.com/audit-lab/audit-service/internal/api/v1"
	"github.com/audit-lab/audit-service/internal/schema"
)

// ErrNotNullViolation is wrapped by StorageError when a required column is missing.
var ErrNotNullViolation = errors.New("required column is null")

// StorageError reports a failed store operation (constraint violation, connectivity).
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Op is the comparison a Condition applies to its field.
type Op int

const (
	// OpEqualsAny matches when the field equals any of the values.
	OpEqualsAny Op = iota
	// OpOverlaps matches when a list field shares at least one element with the values.
	OpOverlaps
)

// Condition restricts one field. Values are already coerced to the field's kind.
type Condition struct {
	Field  schema.Field
	Op     Op
	Values []interface{}
}

// Predicate is a conjunction of conditions over one category, plus optional
// [Start, Stop) bounds on the record timestamp.
type Predicate struct {
	Category   v1.Category
	Conditions []Condition
	Start      *time.Time
	Stop       *time.Time
}

// Query selects rows matching a predicate in ascending timestamp order.
// At and After further restrict the timestamp; Limit 0 means unbounded.
type Query struct {
	Predicate
	At    *time.Time
	After *time.Time
	Limit int
}

// Group is one row of a grouped count. Values are keyed by field name.
type Group struct {
	Values map[string]interface{}
	Count  int64
}

// LogStore is the partitioned, append-only audit log store.
type LogStore interface {
	// Insert writes the record into its monthly partition and returns the id
	// drawn from the category's global sequence. The id is also set on the record.
	Insert(ctx context.Context, rec v1.Record) (int64, error)

	// Find returns matching rows ordered by timestamp, then id.
	Find(ctx context.Context, q Query) ([]v1.Record, error)

	Count(ctx context.Context, p Predicate) (int64, error)

	// GroupCount counts matching rows per distinct combination of the fields.
	GroupCount(ctx context.Context, p Predicate, fields []schema.Field) ([]Group, error)

	Ping(ctx context.Context) error
}
