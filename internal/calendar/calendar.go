// Package calendar provides calendar-day helpers for booking dates.
//
// Dates are carried as YYYY-MM-DD strings and always interpreted as
// midnight UTC of that day, so a date never drifts across a timezone.
package calendar

import (
	"fmt"
	"math"
	"time"
)

// Layout is the ISO calendar date layout used on the wire and in forms.
const Layout = "2006-01-02"

const msPerDay = 24 * 60 * 60 * 1000

// ToISODate returns the UTC calendar day of t as YYYY-MM-DD.
func ToISODate(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Parse reads a YYYY-MM-DD date as midnight UTC.
// A full RFC 3339 timestamp is accepted and truncated to its UTC day.
func Parse(s string) (time.Time, error) {
	if len(s) > len(Layout) {
		ts, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
		}
		return truncate(ts), nil
	}
	d, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return d, nil
}

// Valid reports whether s parses as a calendar date.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// DaysBetween returns the signed number of whole days from a to b.
// It is zero or negative when b is not after a, and zero if either
// date is malformed.
func DaysBetween(a, b string) int {
	d1, err := Parse(a)
	if err != nil {
		return 0
	}
	d2, err := Parse(b)
	if err != nil {
		return 0
	}
	ms := d2.Sub(d1).Milliseconds()
	return int(math.Floor(float64(ms) / msPerDay))
}

// AddDays returns the date n days after d. n may be negative.
// A malformed d is returned unchanged.
func AddDays(d string, n int) string {
	t, err := Parse(d)
	if err != nil {
		return d
	}
	return ToISODate(t.AddDate(0, 0, n))
}

// Today returns the current UTC calendar day. A nil now uses time.Now.
func Today(now func() time.Time) string {
	if now == nil {
		now = time.Now
	}
	return ToISODate(now())
}

// Before reports whether day a is strictly earlier than day b.
func Before(a, b string) bool {
	return DaysBetween(a, b) > 0
}

// Format renders a date for display, e.g. "Jun 10, 2024".
// Unparsable input is returned as-is.
func Format(d string) string {
	t, err := Parse(d)
	if err != nil {
		return d
	}
	return t.Format("Jan 2, 2006")
}

func truncate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
