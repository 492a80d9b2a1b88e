package postgres

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	v1 "github.com/audit-lab/audit-service/internal/api/v1"
	"github.com/audit-lab/audit-service/internal/core/storage"
	"github.com/audit-lab/audit-service/internal/schema"
	"github.com/lib/pq"
)

// columnList quotes and joins the columns of fields.
func columnList(fields []schema.Field) string {
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = pq.QuoteIdentifier(f.Column)
	}
	return strings.Join(cols, ", ")
}

// insertFields returns every field written on insert, i.e. all but id.
func insertFields(reg *schema.Registry, c v1.Category) []schema.Field {
	var out []schema.Field
	for _, f := range reg.Fields(c) {
		if f.Name != "id" {
			out = append(out, f)
		}
	}
	return out
}

// recordArgs converts a record's field values into driver arguments.
// Lists become text[] and additional_data is marshalled to JSONB.
func recordArgs(reg *schema.Registry, rec v1.Record, fields []schema.Field) ([]interface{}, error) {
	args := make([]interface{}, len(fields))
	for i, f := range fields {
		v := reg.Value(rec, f)
		if v == nil {
			continue
		}
		switch f.Kind {
		case schema.KindStringList:
			args[i] = pq.Array(v.([]string))
		case schema.KindOpaque:
			data, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal %s: %w", f.Name, err)
			}
			args[i] = data
		case schema.KindTime:
			args[i] = v.(time.Time).UTC()
		default:
			args[i] = v
		}
	}
	return args, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord scans one row selected with columnList(reg.Fields(c)).
// The Scan targets below follow the registry's declaration order.
func scanRecord(c v1.Category, row scanner) (v1.Record, error) {
	var (
		base v1.AuditRecord
		sub  sql.NullInt64
		data []byte
	)
	common := []interface{}{&base.ID, &base.RequestURL, &base.StatusCode, &base.Timestamp, &base.Username, &sub, &data}

	var (
		rec    v1.Record
		finish func()
		dest   []interface{}
	)

	switch c {
	case v1.CategoryPresignedURL:
		var (
			l        v1.PresignedURLLog
			paths    pq.StringArray
			protocol sql.NullString
			jti      sql.NullString
			passport sql.NullBool
		)
		dest = append(common, &l.GUID, &paths, &l.Action, &protocol, &jti, &passport)
		finish = func() {
			l.AuditRecord = base
			if paths != nil {
				l.ResourcePaths = []string(paths)
			}
			l.Protocol = nullString(protocol)
			l.JTI = nullString(jti)
			if passport.Valid {
				l.Passport = &passport.Bool
			}
		}
		rec = &l
	case v1.CategoryLogin:
		var (
			l                                 v1.LoginLog
			fenceIDP, shibIDP, clientID, ipAd sql.NullString
		)
		dest = append(common, &l.IDP, &fenceIDP, &shibIDP, &clientID, &ipAd)
		finish = func() {
			l.AuditRecord = base
			l.FenceIDP = nullString(fenceIDP)
			l.ShibIDP = nullString(shibIDP)
			l.ClientID = nullString(clientID)
			l.IP = nullString(ipAd)
		}
		rec = &l
	default:
		return nil, fmt.Errorf("%w: '%s'", v1.ErrUnknownCategory, c)
	}

	if err := row.Scan(dest...); err != nil {
		return nil, fmt.Errorf("failed to scan %s row: %w", c, err)
	}

	base.Timestamp = base.Timestamp.UTC()
	if sub.Valid {
		base.Sub = &sub.Int64
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &base.AdditionalData); err != nil {
			return nil, fmt.Errorf("failed to unmarshal additional_data: %w", err)
		}
	}
	finish()

	return rec, nil
}

// scanGroupRow scans one GROUP BY row: the group columns followed by the count.
func scanGroupRow(fields []schema.Field, row scanner) (storage.Group, error) {
	dest := make([]interface{}, len(fields)+1)
	for i, f := range fields {
		switch f.Kind {
		case schema.KindInt:
			dest[i] = new(sql.NullInt64)
		case schema.KindTime:
			dest[i] = new(sql.NullTime)
		case schema.KindBool:
			dest[i] = new(sql.NullBool)
		case schema.KindStringList:
			dest[i] = new(pq.StringArray)
		default:
			dest[i] = new(sql.NullString)
		}
	}
	var count int64
	dest[len(fields)] = &count

	if err := row.Scan(dest...); err != nil {
		return storage.Group{}, fmt.Errorf("failed to scan group row: %w", err)
	}

	values := make(map[string]interface{}, len(fields))
	for i, f := range fields {
		var v interface{}
		switch d := dest[i].(type) {
		case *sql.NullInt64:
			if d.Valid {
				v = d.Int64
			}
		case *sql.NullTime:
			if d.Valid {
				v = d.Time.UTC()
			}
		case *sql.NullBool:
			if d.Valid {
				v = d.Bool
			}
		case *pq.StringArray:
			if *d != nil {
				v = []string(*d)
			}
		case *sql.NullString:
			if d.Valid {
				v = d.String
			}
		}
		values[f.Name] = v
	}

	return storage.Group{Values: values, Count: count}, nil
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

// storageError wraps a driver error, mapping NOT NULL violations onto
// storage.ErrNotNullViolation.
func storageError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "not_null_violation" {
		return &storage.StorageError{Op: op, Err: fmt.Errorf("%w: %s", storage.ErrNotNullViolation, pqErr.Column)}
	}
	return &storage.StorageError{Op: op, Err: err}
}
