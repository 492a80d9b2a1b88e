package partition

import (
	"hash/fnv"
	"time"
)

// Layout is the year-month suffix format of partition names.
const Layout = "2006_01"

// Key returns the YYYY_MM partition key for ts. Months are computed in UTC.
func Key(ts time.Time) string {
	return ts.UTC().Format(Layout)
}

// Name returns the physical partition table for a logical table and instant,
// e.g. presigned_url_2024_01.
func Name(table string, ts time.Time) string {
	return table + "_" + Key(ts)
}

// Bounds returns the [start, end) range covered by the partition holding ts.
func Bounds(ts time.Time) (time.Time, time.Time) {
	u := ts.UTC()
	start := time.Date(u.Year(), u.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// LockKey maps a partition name to a stable advisory lock key.
// Uses FNV-64a so concurrent creators of the same partition contend on one key.
func LockKey(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return int64(h.Sum64())
}
