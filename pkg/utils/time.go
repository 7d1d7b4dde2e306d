package utils

import "time"

// Now returns the current time in UTC.
func Now() time.Time {
	return time.Now().UTC()
}

// UnixToTime converts unix seconds to UTC. Non-positive input yields the zero time.
func UnixToTime(timestamp int64) time.Time {
	if timestamp <= 0 {
		return time.Time{}
	}
	return time.Unix(timestamp, 0).UTC()
}

// FormatISO8601 formats t as RFC3339 in UTC.
func FormatISO8601(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
