// Package cooldown implements the time arithmetic behind quest countdowns.
// Every function is pure; callers supply now.
package cooldown

import "time"

// End returns the end of a countdown that starts at now. If previousEnd is
// set and still in the future it is returned unchanged, which makes
// re-scheduling the same countdown idempotent.
func End(now time.Time, period time.Duration, previousEnd *time.Time) time.Time {
	if previousEnd != nil && previousEnd.After(now) {
		return *previousEnd
	}
	return now.Add(period)
}

// Remaining returns how long until end, never negative.
func Remaining(now, end time.Time) time.Duration {
	if !end.After(now) {
		return 0
	}
	return end.Sub(now)
}

// Elapsed reports whether the countdown ending at end has run out.
func Elapsed(now, end time.Time) bool {
	return !now.Before(end)
}

// ElapsedPeriods returns the smallest count >= 0 such that
// end + count*period > now, along with that shifted end.
//
// The count comes from a single integer division of the gap, so it is exact
// for any absence length. A non-positive period yields (0, end).
func ElapsedPeriods(now, end time.Time, period time.Duration) (int, time.Time) {
	if period <= 0 || end.After(now) {
		return 0, end
	}
	gap := now.Sub(end)
	count := int64(gap/period) + 1
	return int(count), end.Add(time.Duration(count) * period)
}
