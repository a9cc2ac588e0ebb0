package testutil

import "time"

// TimePtr returns a pointer to t, for optional date fields in fixtures
func TimePtr(t time.Time) *time.Time {
	return &t
}

// Date builds a UTC midnight timestamp
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
