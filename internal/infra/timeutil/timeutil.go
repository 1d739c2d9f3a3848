// Package timeutil provides the duration math used by the gamification
// engines: countdown formatting, calendar-day comparison, and period
// division with clock-skew clamping.
package timeutil

import (
	"fmt"
	"time"
)

// FormatCountdown renders a duration as "MM:SS" for display.
// Negative durations clamp to "00:00".
func FormatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// SameCalendarDay reports whether a and b fall on the same date in a's
// location. Streak rules compare dates only, never times of day.
func SameCalendarDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// WholePeriods returns how many complete periods fit in elapsed, clamped
// to zero. A device clock moved backward yields a negative elapsed; that
// must never subtract recharges.
func WholePeriods(elapsed, period time.Duration) int {
	if period <= 0 || elapsed <= 0 {
		return 0
	}
	return int(elapsed / period)
}

// HoursBetween returns the fractional hours from earlier to later.
func HoursBetween(earlier, later time.Time) float64 {
	return later.Sub(earlier).Hours()
}

// NextMidnight returns the first local-midnight instant after t.
func NextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
}
