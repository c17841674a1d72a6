// Package property provides the listing model shared by guests and hosts.
package property

import (
	"strings"
	"time"
)

// Property is a bookable listing.
type Property struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Location      string     `json:"location,omitempty"`
	PricePerNight float64    `json:"price_per_night"`
	IsActive      bool       `json:"is_active"`
	OwnerID       string     `json:"owner_id,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
	MainImageURL  string     `json:"main_image_url,omitempty"`
	ImageURLs     []string   `json:"image_urls,omitempty"`
}

// Find returns the property with the given id, or nil.
func Find(props []Property, id string) *Property {
	for i := range props {
		if props[i].ID == id {
			return &props[i]
		}
	}
	return nil
}

// Filter returns the active properties whose title or location contains
// q, case-insensitively. An empty q keeps every active property.
func Filter(props []Property, q string) []Property {
	needle := strings.ToLower(strings.TrimSpace(q))
	out := make([]Property, 0, len(props))
	for _, p := range props {
		if !p.IsActive {
			continue
		}
		if needle == "" ||
			strings.Contains(strings.ToLower(p.Title), needle) ||
			strings.Contains(strings.ToLower(p.Location), needle) {
			out = append(out, p)
		}
	}
	return out
}
