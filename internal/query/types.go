package query

import "errors"

var (
	// ErrInvalidTimeRange marks start/stop combinations that cannot be served.
	ErrInvalidTimeRange = errors.New("invalid time range")
	// ErrUsernameQueryDisabled is returned when username filtering is turned off.
	ErrUsernameQueryDisabled = errors.New("querying by username is not allowed")
)

// Mode labels which engine answered a query.
type Mode string

const (
	ModePage    Mode = "page"
	ModeCount   Mode = "count"
	ModeGroupBy Mode = "groupby"
)

// Request is a parsed GET /log/:category call.
// Start and Stop are unix seconds; 0 means unset.
type Request struct {
	Category string
	Filters  map[string][]string
	GroupBy  []string
	Start    int64
	Stop     int64
	Count    bool
}

// Response is the query result. Data holds a list of documents, a list of
// groups, or a count depending on the mode.
type Response struct {
	NextTimeStamp *int64      `json:"nextTimeStamp"`
	Data          interface{} `json:"data"`
}
