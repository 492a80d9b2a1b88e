package postgres

import (
	"fmt"
	"strings"

	"github.com/audit-lab/audit-service/internal/core/storage"
	"github.com/lib/pq"
)

// whereBuilder accumulates AND-ed clauses with sequential $n placeholders.
type whereBuilder struct {
	clauses []string
	args    []interface{}
}

func (b *whereBuilder) arg(v interface{}) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *whereBuilder) add(clause string) {
	b.clauses = append(b.clauses, clause)
}

func (b *whereBuilder) sql() string {
	if len(b.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.clauses, " AND ")
}

// buildWhere renders a query's predicate. Values of one condition are OR-ed,
// conditions are AND-ed, list fields use array overlap.
func buildWhere(q storage.Query) *whereBuilder {
	b := &whereBuilder{}
	ts := pq.QuoteIdentifier("timestamp")
	p := q.Predicate

	if p.Start != nil {
		b.add(ts + " >= " + b.arg(p.Start.UTC()))
	}
	if p.Stop != nil {
		b.add(ts + " < " + b.arg(p.Stop.UTC()))
	}

	for _, c := range p.Conditions {
		col := pq.QuoteIdentifier(c.Field.Column)
		if len(c.Values) == 0 {
			b.add("FALSE")
			continue
		}

		switch c.Op {
		case storage.OpOverlaps:
			values := make([]string, len(c.Values))
			for i, v := range c.Values {
				values[i] = fmt.Sprint(v)
			}
			b.add(col + " && " + b.arg(pq.Array(values)) + "::text[]")
		default:
			ors := make([]string, len(c.Values))
			for i, v := range c.Values {
				ors[i] = col + " = " + b.arg(v)
			}
			b.add("(" + strings.Join(ors, " OR ") + ")")
		}
	}

	if q.At != nil {
		b.add(ts + " = " + b.arg(q.At.UTC()))
	}
	if q.After != nil {
		b.add(ts + " > " + b.arg(q.After.UTC()))
	}

	return b
}
