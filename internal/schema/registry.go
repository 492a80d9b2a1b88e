package schema

import (
	"fmt"

	v1 "github.com/audit-lab/audit-service/internal/api/v1"
)

type accessor func(v1.Record) interface{}

type entry struct {
	field Field
	get   accessor
}

// Registry is the static per-category field table. It is built once and
// consulted for field existence, value coercion, in-memory evaluation and
// response rendering. It is safe for concurrent use.
type Registry struct {
	fields map[v1.Category][]entry
	index  map[v1.Category]map[string]int
}

// NewRegistry builds the registry for every known category.
func NewRegistry() *Registry {
	r := &Registry{
		fields: map[v1.Category][]entry{
			v1.CategoryPresignedURL: append(commonEntries(), presignedURLEntries()...),
			v1.CategoryLogin:        append(commonEntries(), loginEntries()...),
		},
		index: make(map[v1.Category]map[string]int),
	}
	for cat, entries := range r.fields {
		idx := make(map[string]int, len(entries))
		for i, e := range entries {
			idx[e.field.Name] = i
		}
		r.index[cat] = idx
	}
	return r
}

// Fields returns the category's fields in declaration order.
func (r *Registry) Fields(c v1.Category) []Field {
	entries := r.fields[c]
	out := make([]Field, len(entries))
	for i, e := range entries {
		out[i] = e.field
	}
	return out
}

// Lookup returns the named field of a category.
func (r *Registry) Lookup(c v1.Category, name string) (Field, error) {
	idx, ok := r.index[c]
	if !ok {
		return Field{}, fmt.Errorf("%w: '%s'", v1.ErrUnknownCategory, c)
	}
	i, ok := idx[name]
	if !ok {
		return Field{}, &FieldError{Category: string(c), Field: name, Err: ErrUnknownField}
	}
	return r.fields[c][i].field, nil
}

// Value reads a field from a record. Unset optional fields yield nil.
func (r *Registry) Value(rec v1.Record, f Field) interface{} {
	i, ok := r.index[rec.Category()][f.Name]
	if !ok {
		return nil
	}
	return r.fields[rec.Category()][i].get(rec)
}

// Document renders a record as a JSON-ready map keyed by field name.
func (r *Registry) Document(rec v1.Record) map[string]interface{} {
	entries := r.fields[rec.Category()]
	doc := make(map[string]interface{}, len(entries))
	for _, e := range entries {
		doc[e.field.Name] = FormatValue(e.get(rec))
	}
	return doc
}

func commonEntries() []entry {
	return []entry{
		{Field{Name: "id", Column: "id", Kind: KindInt, Required: true},
			func(r v1.Record) interface{} { return r.Base().ID }},
		{Field{Name: "request_url", Column: "request_url", Kind: KindString, Required: true},
			func(r v1.Record) interface{} { return r.Base().RequestURL }},
		{Field{Name: "status_code", Column: "status_code", Kind: KindInt, Required: true},
			func(r v1.Record) interface{} { return int64(r.Base().StatusCode) }},
		{Field{Name: "timestamp", Column: "timestamp", Kind: KindTime, Required: true},
			func(r v1.Record) interface{} { return r.Base().Timestamp }},
		{Field{Name: "username", Column: "username", Kind: KindString, Required: true},
			func(r v1.Record) interface{} { return r.Base().Username }},
		{Field{Name: "sub", Column: "sub", Kind: KindInt},
			func(r v1.Record) interface{} { return optInt(r.Base().Sub) }},
		{Field{Name: "additional_data", Column: "additional_data", Kind: KindOpaque},
			func(r v1.Record) interface{} {
				if r.Base().AdditionalData == nil {
					return nil
				}
				return r.Base().AdditionalData
			}},
	}
}

func presignedURLEntries() []entry {
	get := func(fn func(*v1.PresignedURLLog) interface{}) accessor {
		return func(r v1.Record) interface{} {
			l, ok := r.(*v1.PresignedURLLog)
			if !ok {
				return nil
			}
			return fn(l)
		}
	}
	return []entry{
		{Field{Name: "guid", Column: "guid", Kind: KindString, Required: true},
			get(func(l *v1.PresignedURLLog) interface{} { return l.GUID })},
		{Field{Name: "resource_paths", Column: "resource_paths", Kind: KindStringList},
			get(func(l *v1.PresignedURLLog) interface{} {
				if l.ResourcePaths == nil {
					return nil
				}
				return l.ResourcePaths
			})},
		{Field{Name: "action", Column: "action", Kind: KindString, Required: true},
			get(func(l *v1.PresignedURLLog) interface{} { return l.Action })},
		{Field{Name: "protocol", Column: "protocol", Kind: KindString},
			get(func(l *v1.PresignedURLLog) interface{} { return optString(l.Protocol) })},
		{Field{Name: "jti", Column: "jti", Kind: KindString},
			get(func(l *v1.PresignedURLLog) interface{} { return optString(l.JTI) })},
		{Field{Name: "passport", Column: "passport", Kind: KindBool},
			get(func(l *v1.PresignedURLLog) interface{} { return optBool(l.Passport) })},
	}
}

func loginEntries() []entry {
	get := func(fn func(*v1.LoginLog) interface{}) accessor {
		return func(r v1.Record) interface{} {
			l, ok := r.(*v1.LoginLog)
			if !ok {
				return nil
			}
			return fn(l)
		}
	}
	return []entry{
		{Field{Name: "idp", Column: "idp", Kind: KindString, Required: true},
			get(func(l *v1.LoginLog) interface{} { return l.IDP })},
		{Field{Name: "fence_idp", Column: "fence_idp", Kind: KindString},
			get(func(l *v1.LoginLog) interface{} { return optString(l.FenceIDP) })},
		{Field{Name: "shib_idp", Column: "shib_idp", Kind: KindString},
			get(func(l *v1.LoginLog) interface{} { return optString(l.ShibIDP) })},
		{Field{Name: "client_id", Column: "client_id", Kind: KindString},
			get(func(l *v1.LoginLog) interface{} { return optString(l.ClientID) })},
		{Field{Name: "ip", Column: "ip", Kind: KindString},
			get(func(l *v1.LoginLog) interface{} { return optString(l.IP) })},
	}
}

func optString(p *string) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func optInt(p *int64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func optBool(p *bool) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
