// Package availability decides whether stay ranges collide with
// existing reservations.
//
// Ranges are half-open, [check_in, check_out): a guest checking out on
// the day another checks in does not conflict.
package availability

import (
	"errors"
	"fmt"
	"time"

	"github.com/evcraddock/staybook/internal/calendar"
)

// ErrInvalidRange is returned when a range is malformed or not positive.
var ErrInvalidRange = errors.New("invalid date range")

// DateRange is a stay from CheckIn up to, but not including, CheckOut.
type DateRange struct {
	CheckIn  string `json:"check_in"`  // YYYY-MM-DD
	CheckOut string `json:"check_out"` // YYYY-MM-DD
}

// Validate checks both dates parse and CheckOut is strictly after CheckIn.
func (r DateRange) Validate() error {
	if _, err := calendar.Parse(r.CheckIn); err != nil {
		return fmt.Errorf("%w: check-in: %v", ErrInvalidRange, err)
	}
	if _, err := calendar.Parse(r.CheckOut); err != nil {
		return fmt.Errorf("%w: check-out: %v", ErrInvalidRange, err)
	}
	if calendar.DaysBetween(r.CheckIn, r.CheckOut) <= 0 {
		return fmt.Errorf("%w: check-out %s is not after check-in %s", ErrInvalidRange, r.CheckOut, r.CheckIn)
	}
	return nil
}

// Nights returns the number of nights in the range, never negative.
func (r DateRange) Nights() int {
	return max(0, calendar.DaysBetween(r.CheckIn, r.CheckOut))
}

// Overlaps reports whether r and other share at least one night.
func (r DateRange) Overlaps(other DateRange) bool {
	return Overlaps(r.CheckIn, r.CheckOut, other.CheckIn, other.CheckOut)
}

func (r DateRange) String() string {
	return r.CheckIn + " → " + r.CheckOut
}

// BookedRange is a confirmed reservation on a property.
type BookedRange struct {
	PropertyID string `json:"property_id,omitempty"`
	DateRange
}

// ConflictResult is the outcome of checking a draft against booked ranges.
type ConflictResult struct {
	Conflicts             bool         `json:"conflicts"`
	FirstConflictingRange *BookedRange `json:"first_conflicting_range,omitempty"`
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Dates are compared as calendar days.
func Overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return calendar.DaysBetween(aStart, bEnd) > 0 && calendar.DaysBetween(bStart, aEnd) > 0
}

// FindConflict returns the first booked range, in list order, that
// overlaps draft, or nil if there is none.
func FindConflict(draft DateRange, booked []BookedRange) *BookedRange {
	for i := range booked {
		if draft.Overlaps(booked[i].DateRange) {
			b := booked[i]
			return &b
		}
	}
	return nil
}

// Check wraps FindConflict in a ConflictResult.
func Check(draft DateRange, booked []BookedRange) ConflictResult {
	c := FindConflict(draft, booked)
	return ConflictResult{Conflicts: c != nil, FirstConflictingRange: c}
}

// Snapshot is the set of booked ranges for one property as of FetchedAt.
// It is never modified after construction.
type Snapshot struct {
	PropertyID string
	Ranges     []BookedRange
	FetchedAt  time.Time
}

// NewSnapshot copies ranges into a snapshot for propertyID.
// Ranges that fail validation are dropped.
func NewSnapshot(propertyID string, ranges []BookedRange, fetchedAt time.Time) Snapshot {
	kept := make([]BookedRange, 0, len(ranges))
	for _, r := range ranges {
		if r.Validate() != nil {
			continue
		}
		r.PropertyID = propertyID
		kept = append(kept, r)
	}
	return Snapshot{PropertyID: propertyID, Ranges: kept, FetchedAt: fetchedAt}
}

// Check checks draft against the snapshot's ranges.
func (s Snapshot) Check(draft DateRange) ConflictResult {
	return Check(draft, s.Ranges)
}
