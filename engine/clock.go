// Package engine implements the engagement engine: activity streaks, daily
// score accumulation with tiered rewards, lifetime achievement unlocking,
// and badge progress projection. All components are stateless service
// objects over the database; per-process caches are never the source of
// truth.
package engine

import "time"

// Clock supplies the current time. Every component derives "today" from one
// injected Clock so all of them agree on a single calendar-day convention
// and tests can run against fixed dates.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock { return systemClock{} }

// DayOf canonicalizes a timestamp to its calendar day. Day boundaries are
// UTC: every process observing the same instant resolves the same day.
func DayOf(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DayKey formats a timestamp's UTC calendar day as YYYY-MM-DD, the storage
// form used for daily engagement rows.
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return DayOf(a).Equal(DayOf(b))
}

// IsYesterday reports whether last falls on the calendar day immediately
// before today.
func IsYesterday(last, today time.Time) bool {
	return DayOf(last).AddDate(0, 0, 1).Equal(DayOf(today))
}
