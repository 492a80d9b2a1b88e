package partition

import (
	"strconv"
	"testing"
	"time"
)

func TestName(t *testing.T) {
	tests := []struct {
		table string
		ts    time.Time
		want  string
	}{
		{"presigned_url", time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC), "presigned_url_1999_01"},
		{"login", time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC), "login_2024_12"},
		// 2024-03-01 01:00 in UTC+2 is still February in UTC.
		{"login", time.Date(2024, 3, 1, 1, 0, 0, 0, time.FixedZone("UTC+2", 2*3600)), "login_2024_02"},
	}
	for _, tc := range tests {
		if got := Name(tc.table, tc.ts); got != tc.want {
			t.Errorf("Name(%q, %v) = %q, want %q", tc.table, tc.ts, got, tc.want)
		}
	}
}

func TestBounds(t *testing.T) {
	start, end := Bounds(time.Date(2024, 12, 15, 8, 30, 0, 0, time.UTC))
	if !start.Equal(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected start %v", start)
	}
	if !end.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected end %v", end)
	}

	// The first instant of a month belongs to that month, not the previous one.
	ts := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	start, _ = Bounds(ts)
	if !start.Equal(ts) {
		t.Errorf("expected %v to open its own partition, got start %v", ts, start)
	}
}

func TestLockKey_Determinism(t *testing.T) {
	key := LockKey("presigned_url_2024_01")
	for i := 0; i < 100; i++ {
		if got := LockKey("presigned_url_2024_01"); got != key {
			t.Fatalf("LockKey changed on iteration %d: %d != %d", i, got, key)
		}
	}
}

func TestLockKey_Distribution(t *testing.T) {
	// Every month over a century should map to its own key.
	seen := make(map[int64]struct{})
	for year := 1950; year < 2050; year++ {
		for month := 1; month <= 12; month++ {
			seen[LockKey("login_"+strconv.Itoa(year)+"_"+strconv.Itoa(month))] = struct{}{}
		}
	}
	if len(seen) != 1200 {
		t.Errorf("expected 1200 distinct lock keys, got %d", len(seen))
	}
}
