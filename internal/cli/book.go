package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/staybook/internal/booking"
	"github.com/evcraddock/staybook/internal/calendar"
	"github.com/evcraddock/staybook/internal/session"
)

// clock is the current time for booking drafts.
var clock = time.Now

type bookOptions struct {
	propertyID string
	checkIn    string
	checkOut   string
	resume     string
	dryRun     bool
}

// bookResult is the JSON output of sb book.
type bookResult struct {
	Draft       booking.Draft        `json:"draft"`
	Quote       booking.Quote        `json:"quote"`
	Adjustments []booking.Adjustment `json:"adjustments,omitempty"`
	Booking     *booking.Booking     `json:"booking,omitempty"`
	Error       string               `json:"error,omitempty"`
	ResumePath  string               `json:"resume_path,omitempty"`
	SignInPath  string               `json:"sign_in_path,omitempty"`
}

func newBookCmd() *cobra.Command {
	var opts bookOptions

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book a stay",
		Long: `Book a stay. Dates already booked by someone else are avoided: if the
chosen check-in falls inside an existing booking it is moved to that
booking's check-out. Use --dry-run to see the quote without booking.

A draft interrupted by sign-in can be picked up again with --resume.`,
		Example: `  sb book --property 42 --check-in 2024-07-01 --check-out 2024-07-04
  sb book --resume '/booking/new?check_in=2024-07-01&check_out=2024-07-04&property_id=42'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBook(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.propertyID, "property", "p", "", "property to book")
	cmd.Flags().StringVar(&opts.checkIn, "check-in", "", "check-in date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.checkOut, "check-out", "", "check-out date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.resume, "resume", "", "resume a draft from its return path")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "show the quote without booking")

	return cmd
}

func runBook(ctx context.Context, opts bookOptions) error {
	for _, d := range []struct{ name, value string }{
		{"check-in", opts.checkIn},
		{"check-out", opts.checkOut},
	} {
		if d.value != "" && !calendar.Valid(d.value) {
			return fmt.Errorf("invalid %s date %q (want YYYY-MM-DD)", d.name, d.value)
		}
	}

	ctrlOpts, err := resumeOptions(opts.resume)
	if err != nil {
		return err
	}
	ctrlOpts.Now = clock
	ctrlOpts.Logger = slog.Default()
	ctrl := booking.NewController(ctrlOpts)

	c := newAPIClient()

	props, err := c.ListProperties(ctx)
	if err != nil {
		slog.Warn("loading properties failed, prices unavailable", "error", err)
	}
	ctrl.SetProperties(props)

	if opts.propertyID != "" {
		if err := ctrl.SelectProperty(opts.propertyID); err != nil {
			return err
		}
	}
	if opts.checkIn != "" {
		ctrl.OnCheckInChanged(opts.checkIn)
	}
	if opts.checkOut != "" {
		ctrl.OnCheckOutChanged(opts.checkOut)
	}

	// Booked ranges and the session load concurrently.
	fetch := ctrl.FetchBookedRanges(ctx, c)
	sess := session.Load(ctx, c)
	if f, ok := <-fetch; ok {
		ctrl.ApplyFetch(f)
	}

	res := bookResult{Adjustments: ctrl.Adjustments()}
	if !isJSON() {
		for _, a := range res.Adjustments {
			printAdjustment(a)
		}
	}
	res.Draft = ctrl.Draft()
	res.Quote = ctrl.Quote()
	if !isJSON() {
		printQuote(res.Draft, res.Quote)
	}

	if opts.dryRun {
		err := ctrl.Validate()
		if err != nil {
			res.Error = booking.UserMessage(err)
		}
		if isJSON() {
			if perr := printJSON(res); perr != nil {
				return perr
			}
		} else if err == nil {
			fmt.Fprintln(stdout, "\nDates are available. Run again without --dry-run to book.")
		}
		return err
	}

	b, err := ctrl.Submit(ctx, c, sess)
	if err != nil {
		res.Error = booking.UserMessage(err)
		var authErr *booking.AuthError
		if errors.As(err, &authErr) {
			res.ResumePath = authErr.ReturnPath
			res.SignInPath = authErr.SignInPath
		}
		if isJSON() {
			if perr := printJSON(res); perr != nil {
				return perr
			}
		} else if authErr != nil {
			printResumeHint(authErr.ReturnPath)
		}
		return err
	}

	res.Booking = b
	if isJSON() {
		return printJSON(res)
	}
	fmt.Fprintf(stdout, "\n✓ Booked %s to %s (booking %s)\n",
		calendar.Format(b.CheckIn), calendar.Format(b.CheckOut), b.ID)
	return nil
}

// resumeOptions turns a return path such as
// /booking/new?property_id=42&check_in=... into controller options.
func resumeOptions(resume string) (booking.Options, error) {
	if resume == "" {
		return booking.Options{}, nil
	}
	u, err := url.Parse(resume)
	if err != nil {
		return booking.Options{}, fmt.Errorf("invalid resume path: %w", err)
	}
	if u.Path != "" && u.Path != booking.NewBookingPath {
		return booking.Options{}, fmt.Errorf("invalid resume path %q: not a booking draft", resume)
	}
	return booking.FromQuery(u.Query()), nil
}

func printResumeHint(returnPath string) {
	fmt.Fprintln(stdout, "\nYou need to sign in to book. Your draft is kept:")
	fmt.Fprintf(stdout, "  sb login --next %s\n", shellQuote(returnPath))
	fmt.Fprintf(stdout, "  sb book --resume %s\n", shellQuote(returnPath))
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
