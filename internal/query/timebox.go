package query

import (
	"fmt"
	"time"

	v1 "github.com/audit-lab/audit-service/internal/api/v1"
)

const secondsPerDay = 86400

// normalizeTimes resolves the [start, stop) bounds of a query.
//
// An unset stop still counts as "now" when checking the timebox, but is not
// turned into a bound so records written this second remain visible. When a
// maximum span is configured, a lone start implies stop = start + max and a
// missing start is pulled up to the oldest allowed timestamp.
func (s *Service) normalizeTimes(start, stop int64) (*time.Time, *time.Time, error) {
	effectiveStop := stop
	if effectiveStop == 0 {
		effectiveStop = s.nowFn().Unix()
	}

	maxSeconds := int64(s.opts.TimeboxMaxDays) * secondsPerDay
	if maxSeconds > 0 {
		if start != 0 && stop == 0 {
			stop = start + maxSeconds
			effectiveStop = stop
		}
		if start == 0 {
			start = effectiveStop - maxSeconds
			if start < 0 {
				start = 0
			}
		}
	}

	var startTime, stopTime *time.Time
	if start != 0 {
		ts, err := v1.TimeFromUnix(start)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: unable to convert timestamps '%d' and/or '%d' to datetimes", v1.ErrInvalidTimestamp, start, stop)
		}
		startTime = &ts
	}
	if stop != 0 {
		ts, err := v1.TimeFromUnix(stop)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: unable to convert timestamps '%d' and/or '%d' to datetimes", v1.ErrInvalidTimestamp, start, stop)
		}
		stopTime = &ts
	}

	if startTime != nil && stopTime != nil && start > stop {
		return nil, nil, fmt.Errorf("%w: the start timestamp '%d' (%s) should be before the stop timestamp '%d' (%s)",
			ErrInvalidTimeRange, start, startTime.Format(v1.TimestampLayout), stop, stopTime.Format(v1.TimestampLayout))
	}

	if maxSeconds > 0 && effectiveStop-start > maxSeconds {
		return nil, nil, fmt.Errorf("%w: the difference between the start timestamp '%d' and the stop timestamp '%d' is greater than the configured maximum of %d days",
			ErrInvalidTimeRange, start, effectiveStop, s.opts.TimeboxMaxDays)
	}

	return startTime, stopTime, nil
}
