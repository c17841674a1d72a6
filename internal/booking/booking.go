// Package booking drives a guest's booking draft: date edits, conflict
// resolution against existing reservations, pricing, and submission.
package booking

import (
	"context"

	"github.com/evcraddock/staybook/internal/availability"
	"github.com/evcraddock/staybook/internal/calendar"
	"github.com/evcraddock/staybook/internal/property"
	"github.com/evcraddock/staybook/internal/session"
)

// Request is the body of POST /bookings.
type Request struct {
	PropertyID string `json:"property_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
}

// Booking is a reservation accepted by the backend.
type Booking struct {
	ID         string  `json:"id"`
	PropertyID string  `json:"property_id"`
	CheckIn    string  `json:"check_in"`
	CheckOut   string  `json:"check_out"`
	TotalPrice float64 `json:"total_price"`
	CreatedAt  string  `json:"created_at,omitempty"`
}

// RangeSource supplies booked ranges for a property.
type RangeSource interface {
	BookedRanges(ctx context.Context, propertyID string) ([]availability.BookedRange, error)
}

// Creator submits a booking to the backend.
type Creator interface {
	CreateBooking(ctx context.Context, req Request) (*Booking, error)
}

// Gateway is everything the booking flow needs from the backend.
type Gateway interface {
	RangeSource
	Creator
	session.UserSource
	ListProperties(ctx context.Context) ([]property.Property, error)
}

// UnknownTitle is shown for bookings whose property could not be loaded.
const UnknownTitle = "Unknown property"

// Summary is a booking joined with its property for display.
type Summary struct {
	Booking
	Title    string `json:"title"`
	Location string `json:"location,omitempty"`
	Nights   int    `json:"nights"`
}

// Summarize joins bookings with their properties.
func Summarize(bookings []Booking, props map[string]property.Property) []Summary {
	out := make([]Summary, 0, len(bookings))
	for _, b := range bookings {
		s := Summary{
			Booking: b,
			Title:   UnknownTitle,
			Nights:  max(0, calendar.DaysBetween(b.CheckIn, b.CheckOut)),
		}
		if p, ok := props[b.PropertyID]; ok {
			s.Title = p.Title
			s.Location = p.Location
		}
		out = append(out, s)
	}
	return out
}

// MissingPropertyIDs returns the distinct property ids referenced by
// bookings that are not in props, in first-seen order.
func MissingPropertyIDs(bookings []Booking, props map[string]property.Property) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, b := range bookings {
		if _, ok := props[b.PropertyID]; ok || seen[b.PropertyID] || b.PropertyID == "" {
			continue
		}
		seen[b.PropertyID] = true
		ids = append(ids, b.PropertyID)
	}
	return ids
}
