package quota

import (
	"math"
	"time"
)

// HourBucket returns the start of the clock hour containing now, in UTC.
func HourBucket(now time.Time) time.Time {
	return now.UTC().Truncate(time.Hour)
}

// NextReset returns the start of the next full UTC clock hour after now.
// It is not now+1h: 14:37:22 resets at 15:00:00. In zones with a fractional
// offset such as +05:30 this falls on :30 local time.
func NextReset(now time.Time) time.Time {
	return HourBucket(now).Add(time.Hour)
}

// NextResetISO formats NextReset as RFC 3339 in UTC.
func NextResetISO(now time.Time) string {
	return NextReset(now).Format(time.RFC3339)
}

// ShouldReset reports whether a stored last-reset timestamp is more than one hour old.
func ShouldReset(lastReset, now time.Time) bool {
	return now.Sub(lastReset) > time.Hour
}

// MonthStart returns the first instant of now's calendar month, in UTC.
func MonthStart(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// NextMonthlyReset returns the first instant of the next calendar month, in UTC.
func NextMonthlyReset(now time.Time) time.Time {
	return MonthStart(now).AddDate(0, 1, 0)
}

// minutesUntil rounds the wait up to whole minutes.
func minutesUntil(now, reset time.Time) int {
	d := reset.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Minutes()))
}
