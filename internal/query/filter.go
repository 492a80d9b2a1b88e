package query

import (
	"errors"
	"fmt"
	"sort"
	"time"

	v1 "github.com/audit-lab/audit-service/internal/api/v1"
	"github.com/audit-lab/audit-service/internal/core/storage"
	"github.com/audit-lab/audit-service/internal/schema"
)

// BuildPredicate turns query-string filters into a predicate over one
// category. Values of the same field are ORed and different fields are
// ANDed. List fields match on overlap; every other field is coerced to its
// kind and matched on equality.
func BuildPredicate(reg *schema.Registry, cat v1.Category, filters map[string][]string, start, stop *time.Time) (storage.Predicate, error) {
	p := storage.Predicate{Category: cat, Start: start, Stop: stop}

	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		field, err := reg.Lookup(cat, name)
		if err != nil {
			return storage.Predicate{}, err
		}

		cond := storage.Condition{Field: field, Op: storage.OpEqualsAny}
		if field.Kind == schema.KindStringList {
			cond.Op = storage.OpOverlaps
		}

		seen := make(map[string]struct{})
		for _, raw := range filters[name] {
			if _, dup := seen[raw]; dup {
				continue
			}
			seen[raw] = struct{}{}

			v, err := field.Coerce(raw)
			if err != nil {
				return storage.Predicate{}, withCategory(err, cat)
			}
			cond.Values = append(cond.Values, v)
		}
		p.Conditions = append(p.Conditions, cond)
	}

	return p, nil
}

// groupFields resolves groupby names, dropping duplicates.
func groupFields(reg *schema.Registry, cat v1.Category, names []string) ([]schema.Field, error) {
	var (
		fields []schema.Field
		seen   = make(map[string]struct{})
	)
	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		field, err := reg.Lookup(cat, name)
		if err != nil {
			return nil, err
		}
		if !field.Queryable() {
			return nil, &schema.FieldError{
				Category: string(cat),
				Field:    name,
				Err:      fmt.Errorf("%w: %s fields cannot be grouped", schema.ErrInvalidFieldValue, field.Kind),
			}
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func withCategory(err error, cat v1.Category) error {
	var fe *schema.FieldError
	if errors.As(err, &fe) && fe.Category == "" {
		fe.Category = string(cat)
	}
	return err
}
