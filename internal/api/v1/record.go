package v1

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrUnknownCategory       = errors.New("unknown category")
	ErrInvalidAction         = errors.New("invalid action")
	ErrInvalidTimestamp      = errors.New("invalid timestamp")
	ErrInvalidAdditionalData = errors.New("invalid additional_data")
	// ErrInvalidField marks a missing required field or a value of the wrong JSON type.
	ErrInvalidField = errors.New("invalid or missing field")
)

// TimestampLayout is the wire format of record timestamps in query responses.
const TimestampLayout = "2006-01-02T15:04:05"

const (
	ActionDownload = "download"
	ActionUpload   = "upload"
)

// AllowedActions lists the accepted values of PresignedURLLog.Action.
var AllowedActions = []string{ActionDownload, ActionUpload}

// Category is one of the fixed record kinds. Its value is also the name of the
// logical table holding the category's rows.
type Category string

const (
	CategoryPresignedURL Category = "presigned_url"
	CategoryLogin        Category = "login"
)

// Categories returns every known category in a stable order.
func Categories() []Category {
	return []Category{CategoryPresignedURL, CategoryLogin}
}

// ParseCategory resolves a path segment into a Category.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: '%s' is not one of %v", ErrUnknownCategory, s, Categories())
}

// Table is the logical (parent) table name.
func (c Category) Table() string {
	return string(c)
}

// Sequence is the global id sequence shared by every partition of the table.
func (c Category) Sequence() string {
	return "global_" + string(c) + "_id_seq"
}

// Record is implemented by every category-specific log type.
type Record interface {
	Category() Category
	Base() *AuditRecord
}

// AuditRecord holds the fields common to all categories.
type AuditRecord struct {
	// ID is drawn from the category's global sequence at insert time.
	ID         int64
	RequestURL string
	StatusCode int
	// Timestamp decides which monthly partition the row lands in. Always UTC.
	Timestamp time.Time
	Username  string
	// Sub is nil for public/anonymous data.
	Sub *int64
	// AdditionalData is stored opaquely and never interpreted.
	AdditionalData map[string]interface{}
}

// PresignedURLLog records the issuing of a presigned URL.
type PresignedURLLog struct {
	AuditRecord
	GUID          string
	ResourcePaths []string
	Action        string
	// Protocol may be nil when the resource does not exist or Action is upload.
	Protocol *string
	JTI      *string
	Passport *bool
}

func (l *PresignedURLLog) Category() Category { return CategoryPresignedURL }
func (l *PresignedURLLog) Base() *AuditRecord  { return &l.AuditRecord }

// Validate checks the category-specific domain rules.
func (l *PresignedURLLog) Validate() error {
	for _, a := range AllowedActions {
		if l.Action == a {
			return nil
		}
	}
	return fmt.Errorf("%w: action '%s' is not allowed (%v)", ErrInvalidAction, l.Action, AllowedActions)
}

// LoginLog records a user login.
type LoginLog struct {
	AuditRecord
	IDP      string
	FenceIDP *string
	ShibIDP  *string
	ClientID *string
	IP       *string
}

func (l *LoginLog) Category() Category { return CategoryLogin }
func (l *LoginLog) Base() *AuditRecord  { return &l.AuditRecord }

// Unix seconds bounds of years 1 through 9999 UTC.
const (
	minUnixSeconds = -62135596800
	maxUnixSeconds = 253402300799
)

// TimeFromUnix converts unix seconds into a UTC instant.
func TimeFromUnix(sec int64) (time.Time, error) {
	if sec < minUnixSeconds || sec > maxUnixSeconds {
		return time.Time{}, fmt.Errorf("%w: '%d' is out of range", ErrInvalidTimestamp, sec)
	}
	return time.Unix(sec, 0).UTC(), nil
}
