package alarm

import "time"

// NextOccurrence returns the next instant at which tod occurs strictly after
// now, in now's location. The candidate is built on now's calendar date
// with seconds and sub-seconds zeroed; if that instant has already passed
// (or is exactly now), the same time of day on the next calendar day is
// returned. time.Date normalizes day overflow, so month and year boundaries
// roll correctly.
func NextOccurrence(tod TimeOfDay, now time.Time) time.Time {
	candidate := time.Date(now.Year(), now.Month(), now.Day(), tod.Hour, tod.Minute, 0, 0, now.Location())
	if !candidate.After(now) {
		candidate = time.Date(now.Year(), now.Month(), now.Day()+1, tod.Hour, tod.Minute, 0, 0, now.Location())
	}
	return candidate
}
