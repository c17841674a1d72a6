package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/evcraddock/staybook/internal/booking"
	"github.com/evcraddock/staybook/internal/calendar"
	"github.com/evcraddock/staybook/internal/property"
)

// stdout is where command output goes. Tests replace it.
var stdout io.Writer = os.Stdout

// printJSON marshals v as indented JSON and writes it to stdout.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printPropertySummary prints a single listing in text format.
func printPropertySummary(p *property.Property, storageBase string) {
	fmt.Fprintf(stdout, "%s\n", p.Title)
	fmt.Fprintf(stdout, "  ID:       %s\n", p.ID)
	if p.Location != "" {
		fmt.Fprintf(stdout, "  Location: %s\n", p.Location)
	}
	fmt.Fprintf(stdout, "  Price:    %s / night\n", formatPrice(p.PricePerNight))
	if !p.IsActive {
		fmt.Fprintln(stdout, "  Status:   inactive")
	}
	if p.MainImageURL != "" {
		fmt.Fprintf(stdout, "  Image:    %s\n", property.PublicURL(storageBase, property.Bucket, p.MainImageURL))
	}
	for _, ref := range p.ImageURLs {
		fmt.Fprintf(stdout, "            %s\n", property.PublicURL(storageBase, property.Bucket, ref))
	}
	if p.Description != "" {
		fmt.Fprintf(stdout, "\n%s\n", p.Description)
	}
}

// printPropertyTable prints a list of listings as a formatted table.
func printPropertyTable(props []property.Property) error {
	if len(props) == 0 {
		fmt.Fprintln(stdout, "No properties found.")
		return nil
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tTITLE\tLOCATION\tPRICE/NIGHT\tACTIVE"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "--\t-----\t--------\t-----------\t------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, p := range props {
		location := "-"
		if p.Location != "" {
			location = truncate(p.Location, 24)
		}
		active := "yes"
		if !p.IsActive {
			active = "no"
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			p.ID, truncate(p.Title, 40), location, formatPrice(p.PricePerNight), active); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Fprintf(stdout, "\nTotal: %d properties\n", len(props))
	return nil
}

// printBookingTable prints bookings joined with their listings.
func printBookingTable(summaries []booking.Summary) error {
	if len(summaries) == 0 {
		fmt.Fprintln(stdout, "No bookings yet.")
		return nil
	}

	w := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "PROPERTY\tCHECK-IN\tCHECK-OUT\tNIGHTS\tTOTAL"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "--------\t--------\t---------\t------\t-----"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, s := range summaries {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			truncate(s.Title, 40), calendar.Format(s.CheckIn), calendar.Format(s.CheckOut),
			s.Nights, formatPrice(s.TotalPrice)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	return w.Flush()
}

// printQuote prints the draft's dates and price.
func printQuote(d booking.Draft, q booking.Quote) {
	title := d.PropertyID
	if q.Property != nil {
		title = q.Property.Title
	}
	fmt.Fprintf(stdout, "Property:  %s\n", title)
	fmt.Fprintf(stdout, "Check-in:  %s\n", calendar.Format(d.CheckIn))
	fmt.Fprintf(stdout, "Check-out: %s\n", calendar.Format(d.CheckOut))
	if q.Property == nil {
		fmt.Fprintf(stdout, "Nights:    %d\n", q.Nights)
		return
	}
	fmt.Fprintf(stdout, "Nights:    %d × %s = %s\n", q.Nights, formatPrice(q.PricePerNight), formatPrice(q.Total))
}

// printAdjustment explains an automatic date move.
func printAdjustment(a booking.Adjustment) {
	fmt.Fprintf(stdout, "! %s is already booked; dates moved from %s to %s\n",
		a.Because.String(), a.From.String(), a.To.String())
}

// formatPrice formats an amount with thousands separators, keeping two
// decimals only when there are cents.
func formatPrice(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	cents := int64(math.Round(amount * 100))
	whole := groupThousands(cents / 100)
	if frac := cents % 100; frac != 0 {
		return fmt.Sprintf("%s%s.%02d", sign, whole, frac)
	}
	return sign + whole
}

func groupThousands(n int64) string {
	s := fmt.Sprintf("%d", n)

	// Add commas
	if len(s) <= 3 {
		return s
	}

	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)

	return strings.Join(parts, ",")
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
