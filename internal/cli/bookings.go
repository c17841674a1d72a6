package cli

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/evcraddock/staybook/internal/booking"
	"github.com/evcraddock/staybook/internal/client"
	"github.com/evcraddock/staybook/internal/property"
	"github.com/evcraddock/staybook/internal/session"
)

// maxPropertyFetches bounds concurrent lookups of listings missing from
// the catalog.
const maxPropertyFetches = 4

func newBookingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bookings",
		Short: "List your bookings",
		Long:  "List your bookings with the listing title, nights and total price.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBookings(cmd.Context())
		},
	}
}

func runBookings(ctx context.Context) error {
	c := newAPIClient()
	if !session.Load(ctx, c).SignedIn() {
		return session.ErrNotSignedIn
	}

	bookings, err := c.ListBookings(ctx)
	if err != nil {
		return err
	}

	props := make(map[string]property.Property)
	catalog, err := c.ListProperties(ctx)
	if err != nil {
		slog.Warn("loading properties failed", "error", err)
	}
	for _, p := range catalog {
		props[p.ID] = p
	}
	if err := fetchMissing(ctx, c, bookings, props); err != nil {
		slog.Warn("loading booked properties failed", "error", err)
	}

	summaries := booking.Summarize(bookings, props)
	if isJSON() {
		return printJSON(summaries)
	}
	return printBookingTable(summaries)
}

// fetchMissing looks up listings that bookings reference but the catalog
// lacks, such as inactive ones. A failed lookup does not stop the others;
// its booking is shown with a placeholder title and the first failure is
// returned.
func fetchMissing(ctx context.Context, c *client.Client, bookings []booking.Booking, props map[string]property.Property) error {
	missing := booking.MissingPropertyIDs(bookings, props)
	if len(missing) == 0 {
		return nil
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(maxPropertyFetches)
	for _, id := range missing {
		g.Go(func() error {
			p, err := c.GetProperty(ctx, id)
			if err != nil {
				return fmt.Errorf("property %s: %w", id, err)
			}
			mu.Lock()
			props[id] = *p
			mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}
