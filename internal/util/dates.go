package util

import "time"

// DaysSince returns the number of whole days elapsed since t.
func DaysSince(t time.Time) int {
	return int(time.Since(t).Hours() / 24)
}

// MidYear returns June 30th of the given year, the reference date used for
// aging yearly aggregate statistics.
func MidYear(year int) time.Time {
	return time.Date(year, time.June, 30, 0, 0, 0, 0, time.UTC)
}
