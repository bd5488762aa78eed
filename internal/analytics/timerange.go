// internal/analytics/timerange.go
package analytics

import (
	"math"
	"time"

	"merchant-analytics/internal/models"
)

const DefaultDays = 30

// maxDays is the largest day count whose offset fits in a time.Duration.
const maxDays = math.MaxInt64 / int64(24*time.Hour)

// ResolveTimeRange turns an optional range into concrete [from, to] bounds.
// Missing To becomes now; missing From becomes now minus Days (default 30).
// Reversed or empty windows are passed through untouched.
func ResolveTimeRange(tr models.TimeRange, now time.Time) (time.Time, time.Time) {
	days := DefaultDays
	if tr.Days != nil {
		days = *tr.Days
	}

	to := now
	if tr.To != nil {
		to = *tr.To
	}

	from := now.Add(-dayOffset(days))
	if tr.From != nil {
		from = *tr.From
	}

	return from, to
}

// dayOffset saturates instead of wrapping for day counts beyond ~292 years.
func dayOffset(days int) time.Duration {
	d := int64(days)
	switch {
	case d > maxDays:
		d = maxDays
	case d < -maxDays:
		d = -maxDays
	}
	return time.Duration(d) * 24 * time.Hour
}
