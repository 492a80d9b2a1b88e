package query

import (
	"context"
	"fmt"
	"time"

	v1 "github.com/audit-lab/audit-service/internal/api/v1"
	"github.com/audit-lab/audit-service/internal/core/storage"
	"github.com/audit-lab/audit-service/internal/schema"
	"github.com/audit-lab/audit-service/internal/telemetry"
)

const usernameField = "username"

type Options struct {
	PageSize int
	// TimeboxMaxDays caps stop - start. 0 disables the check.
	TimeboxMaxDays int
	// QueryUsernames allows filtering and grouping on username and returning it.
	QueryUsernames bool
}

// Service answers audit log queries: paginated listings, counts and grouped counts.
type Service struct {
	store    storage.LogStore
	registry *schema.Registry
	opts     Options
	nowFn    func() time.Time
}

func NewService(store storage.LogStore, registry *schema.Registry, opts Options) *Service {
	if store == nil {
		panic("query: store must not be nil")
	}
	if registry == nil {
		panic("query: registry must not be nil")
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 1000
	}
	return &Service{
		store:    store,
		registry: registry,
		opts:     opts,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Query validates req and runs it. Groupby takes precedence over count, which
// takes precedence over pagination.
func (s *Service) Query(ctx context.Context, req Request) (*Response, error) {
	cat, err := v1.ParseCategory(req.Category)
	if err != nil {
		return nil, err
	}

	start, stop, err := s.normalizeTimes(req.Start, req.Stop)
	if err != nil {
		return nil, err
	}

	pred, err := BuildPredicate(s.registry, cat, req.Filters, start, stop)
	if err != nil {
		return nil, err
	}
	groups, err := groupFields(s.registry, cat, req.GroupBy)
	if err != nil {
		return nil, err
	}

	if !s.opts.QueryUsernames {
		if _, ok := req.Filters[usernameField]; ok {
			return nil, ErrUsernameQueryDisabled
		}
		for _, f := range groups {
			if f.Name == usernameField {
				return nil, ErrUsernameQueryDisabled
			}
		}
	}

	switch {
	case len(groups) > 0:
		telemetry.QueriesTotal.WithLabelValues(string(cat), string(ModeGroupBy)).Inc()
		return s.groupBy(ctx, pred, groups)
	case req.Count:
		telemetry.QueriesTotal.WithLabelValues(string(cat), string(ModeCount)).Inc()
		n, err := s.store.Count(ctx, pred)
		if err != nil {
			return nil, fmt.Errorf("count records: %w", err)
		}
		return &Response{Data: n}, nil
	default:
		telemetry.QueriesTotal.WithLabelValues(string(cat), string(ModePage)).Inc()
		rows, next, err := s.page(ctx, pred)
		if err != nil {
			return nil, err
		}
		return &Response{NextTimeStamp: next, Data: s.documents(rows)}, nil
	}
}

func (s *Service) groupBy(ctx context.Context, p storage.Predicate, fields []schema.Field) (*Response, error) {
	groups, err := s.store.GroupCount(ctx, p, fields)
	if err != nil {
		return nil, fmt.Errorf("group records: %w", err)
	}

	data := make([]map[string]interface{}, 0, len(groups))
	for _, g := range groups {
		row := make(map[string]interface{}, len(fields)+1)
		for _, f := range fields {
			row[f.Name] = schema.FormatValue(g.Values[f.Name])
		}
		row["count"] = g.Count
		data = append(data, row)
	}
	return &Response{Data: data}, nil
}

func (s *Service) documents(rows []v1.Record) []map[string]interface{} {
	docs := make([]map[string]interface{}, 0, len(rows))
	for _, rec := range rows {
		doc := s.registry.Document(rec)
		if !s.opts.QueryUsernames {
			delete(doc, usernameField)
		}
		docs = append(docs, doc)
	}
	return docs
}
