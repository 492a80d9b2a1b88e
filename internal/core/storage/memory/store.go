package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	v1 "github.com/audit-lab/audit-service/internal/api/v1"
	"github.com/audit-lab/audit-service/internal/core/partition"
	"github.com/audit-lab/audit-service/internal/core/storage"
	"github.com/audit-lab/audit-service/internal/schema"
)

// Store is an in-memory implementation of storage.LogStore.
// Rows are kept per monthly partition and ids come from one counter per
// category, mirroring the postgres layout. Useful for testing and development.
type Store struct {
	mu         sync.RWMutex
	registry   *schema.Registry
	partitions map[string][]v1.Record
	sequences  map[v1.Category]int64
}

// NewStore creates an empty in-memory store.
func NewStore(registry *schema.Registry) *Store {
	if registry == nil {
		panic("memory: registry must not be nil")
	}
	return &Store{
		registry:   registry,
		partitions: make(map[string][]v1.Record),
		sequences:  make(map[v1.Category]int64),
	}
}

func (s *Store) Insert(ctx context.Context, rec v1.Record) (int64, error) {
	if err := checkNotNull(rec); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cat := rec.Category()
	s.sequences[cat]++
	id := s.sequences[cat]

	// Store a copy to prevent external modification
	stored := clone(rec)
	stored.Base().ID = id
	name := partition.Name(cat.Table(), stored.Base().Timestamp)
	s.partitions[name] = append(s.partitions[name], stored)

	rec.Base().ID = id
	return id, nil
}

func (s *Store) Find(ctx context.Context, q storage.Query) ([]v1.Record, error) {
	rows := s.scan(q.Predicate)

	var out []v1.Record
	for _, rec := range rows {
		ts := rec.Base().Timestamp
		if q.At != nil && !ts.Equal(*q.At) {
			continue
		}
		if q.After != nil && !ts.After(*q.After) {
			continue
		}
		out = append(out, rec)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (s *Store) Count(ctx context.Context, p storage.Predicate) (int64, error) {
	return int64(len(s.scan(p))), nil
}

func (s *Store) GroupCount(ctx context.Context, p storage.Predicate, fields []schema.Field) ([]storage.Group, error) {
	var (
		groups []storage.Group
		index  = make(map[string]int)
	)
	for _, rec := range s.scan(p) {
		values := make(map[string]interface{}, len(fields))
		keyParts := make([]string, len(fields))
		for i, f := range fields {
			v := s.registry.Value(rec, f)
			values[f.Name] = v
			keyParts[i] = fmt.Sprintf("%T:%v", v, v)
		}
		key := strings.Join(keyParts, "\x1f")
		if i, ok := index[key]; ok {
			groups[i].Count++
			continue
		}
		index[key] = len(groups)
		groups = append(groups, storage.Group{Values: values, Count: 1})
	}
	return groups, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// Partitions lists the partitions created so far for a category.
func (s *Store) Partitions(c v1.Category) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	for name := range s.partitions {
		if strings.HasPrefix(name, c.Table()+"_") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// scan returns copies of every row matching p, ordered by timestamp then id.
func (s *Store) scan(p storage.Predicate) []v1.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []v1.Record
	for name, rows := range s.partitions {
		if !strings.HasPrefix(name, p.Category.Table()+"_") {
			continue
		}
		for _, rec := range rows {
			if rec.Category() == p.Category && s.matches(rec, p) {
				out = append(out, clone(rec))
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Base(), out[j].Base()
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		return a.ID < b.ID
	})
	return out
}

func (s *Store) matches(rec v1.Record, p storage.Predicate) bool {
	ts := rec.Base().Timestamp
	if p.Start != nil && ts.Before(*p.Start) {
		return false
	}
	if p.Stop != nil && !ts.Before(*p.Stop) {
		return false
	}
	for _, c := range p.Conditions {
		if !conditionMatches(c, s.registry.Value(rec, c.Field)) {
			return false
		}
	}
	return true
}

func conditionMatches(c storage.Condition, v interface{}) bool {
	if v == nil {
		return false
	}
	if c.Op == storage.OpOverlaps {
		list, _ := v.([]string)
		for _, elem := range list {
			for _, want := range c.Values {
				if elem == want {
					return true
				}
			}
		}
		return false
	}
	for _, want := range c.Values {
		if equalValues(v, want) {
			return true
		}
	}
	return false
}

func equalValues(a, b interface{}) bool {
	switch av := a.(type) {
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	case []string, map[string]interface{}:
		return false
	default:
		return a == b
	}
}

// checkNotNull rejects what postgres would store as NULL in a NOT NULL
// column. Required scalars are plain values in the record types, so only a
// zero timestamp qualifies; empty strings are stored as-is. Missing fields
// in a request body are caught earlier by ingestion.DecodeRecord.
func checkNotNull(rec v1.Record) error {
	if rec.Base().Timestamp.IsZero() {
		return &storage.StorageError{Op: "insert", Err: fmt.Errorf("%w: timestamp", storage.ErrNotNullViolation)}
	}
	return nil
}

func clone(rec v1.Record) v1.Record {
	switch r := rec.(type) {
	case *v1.PresignedURLLog:
		c := *r
		if r.ResourcePaths != nil {
			c.ResourcePaths = append([]string{}, r.ResourcePaths...)
		}
		return &c
	case *v1.LoginLog:
		c := *r
		return &c
	default:
		return rec
	}
}
