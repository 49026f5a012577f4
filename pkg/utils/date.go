package utils

import (
	"time"
)

// DateLayout is the canonical YYYY-MM-DD format used for trading dates.
const DateLayout = "2006-01-02"

// TimeNowUTC returns the current time in UTC. All pipeline stages operate on
// UTC trading days.
func TimeNowUTC() time.Time {
	return time.Now().UTC()
}

// FormatDate renders a time as a trading-date string.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD trading date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// TruncateToDay drops the time-of-day component, keeping UTC midnight.
func TruncateToDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
