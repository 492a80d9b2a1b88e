package query

import (
	"context"
	"fmt"

	v1 "github.com/audit-lab/audit-service/internal/api/v1"
	"github.com/audit-lab/audit-service/internal/core/storage"
)

// page fetches one page of records and the cursor for the next one.
//
// Records sharing the last timestamp of a page are never split: when more
// than one record has that timestamp, all of them are returned, so a page
// can be longer than the page size. The cursor is the timestamp of the
// first record after the page, or nil when there is none.
func (s *Service) page(ctx context.Context, p storage.Predicate) ([]v1.Record, *int64, error) {
	size := s.opts.PageSize

	rows, err := s.store.Find(ctx, storage.Query{Predicate: p, Limit: size})
	if err != nil {
		return nil, nil, fmt.Errorf("find page: %w", err)
	}
	if len(rows) < size {
		return rows, nil, nil
	}

	lastTS := rows[len(rows)-1].Base().Timestamp

	tied, err := s.store.Find(ctx, storage.Query{Predicate: p, At: &lastTS})
	if err != nil {
		return nil, nil, fmt.Errorf("find tied records: %w", err)
	}
	if len(tied) > 1 {
		cut := len(rows)
		for cut > 0 && rows[cut-1].Base().Timestamp.Equal(lastTS) {
			cut--
		}
		rows = append(rows[:cut], tied...)
	}

	next, err := s.store.Find(ctx, storage.Query{Predicate: p, After: &lastTS, Limit: 1})
	if err != nil {
		return nil, nil, fmt.Errorf("find next cursor: %w", err)
	}
	if len(next) == 0 {
		return rows, nil, nil
	}

	cursor := next[0].Base().Timestamp.Unix()
	return rows, &cursor, nil
}
