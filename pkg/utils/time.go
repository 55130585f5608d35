package utils

import "time"

// NowUTC returns the current time in UTC. All scheduling and streak
// arithmetic runs on UTC dates; per-user timezones are a presentation concern.
func NowUTC() time.Time {
	return time.Now().UTC()
}

func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Today returns the current UTC calendar day at midnight.
func Today() time.Time {
	return StartOfDay(NowUTC())
}

func DatesEqual(t1, t2 time.Time) bool {
	return StartOfDay(t1).Equal(StartOfDay(t2))
}

// DaysBetween returns the number of whole calendar days from a to b,
// negative when b is before a.
func DaysBetween(a, b time.Time) int {
	from := StartOfDay(a)
	to := StartOfDay(b)
	return int(to.Sub(from).Hours() / 24)
}
