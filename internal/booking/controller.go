package booking

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/evcraddock/staybook/internal/availability"
	"github.com/evcraddock/staybook/internal/calendar"
	"github.com/evcraddock/staybook/internal/property"
	"github.com/evcraddock/staybook/internal/session"
)

// NewBookingPath is where a booking draft is edited.
const NewBookingPath = "/booking/new"

// State is where a draft is in its lifecycle.
type State string

const (
	StateEmpty            State = "empty"
	StatePropertySelected State = "property_selected"
	StateRangeSelected    State = "range_selected"
	StateConflictDetected State = "conflict_detected"
	StateRangeAdjusted    State = "range_adjusted"
	StateValidated        State = "validated"
	StateSubmitting       State = "submitting"
	StateCommitted        State = "committed"
	StateRejected         State = "rejected"
	StateAbandoned        State = "abandoned"
)

// Draft is the in-progress selection.
type Draft struct {
	PropertyID string `json:"property_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
}

// Range returns the draft's dates as a DateRange.
func (d Draft) Range() availability.DateRange {
	return availability.DateRange{CheckIn: d.CheckIn, CheckOut: d.CheckOut}
}

// Adjustment records an automatic move of the draft out of a conflict.
type Adjustment struct {
	From    availability.DateRange   `json:"from"`
	To      availability.DateRange   `json:"to"`
	Because availability.BookedRange `json:"because"`
}

// Quote is the derived price of the current draft.
type Quote struct {
	Property      *property.Property `json:"property,omitempty"`
	Nights        int                `json:"nights"`
	PricePerNight float64            `json:"price_per_night"`
	Total         float64            `json:"total_price"`
}

// Options configure a new Controller.
type Options struct {
	// PropertyID pre-selects and locks the property.
	PropertyID string
	// CheckIn and CheckOut restore previously entered dates.
	CheckIn  string
	CheckOut string
	Now      func() time.Time
	Logger   *slog.Logger
}

// FromQuery reads draft options from a deep link or return path query.
func FromQuery(q url.Values) Options {
	id := q.Get("property_id")
	if id == "" {
		id = q.Get("propertyId")
	}
	return Options{
		PropertyID: id,
		CheckIn:    q.Get("check_in"),
		CheckOut:   q.Get("check_out"),
	}
}

// RangeFetch is the result of fetching booked ranges, keyed by the
// property it was requested for.
type RangeFetch struct {
	PropertyID string
	Ranges     []availability.BookedRange
	Err        error
}

// Controller owns one booking draft. It is driven by a single caller
// and is not safe for concurrent use.
type Controller struct {
	draft       Draft
	locked      bool
	props       []property.Property
	snap        availability.Snapshot
	state       State
	adjustments []Adjustment
	lastAdjust  *Adjustment
	lastErr     error
	now         func() time.Time
	log         *slog.Logger
}

// NewController opens a draft. Dates default to today and tomorrow (UTC).
func NewController(opts Options) *Controller {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	checkIn := opts.CheckIn
	if checkIn == "" {
		checkIn = calendar.Today(now)
	}
	checkOut := opts.CheckOut
	if checkOut == "" {
		checkOut = calendar.AddDays(checkIn, 1)
	}

	c := &Controller{
		draft: Draft{
			PropertyID: opts.PropertyID,
			CheckIn:    checkIn,
			CheckOut:   checkOut,
		},
		locked: opts.PropertyID != "",
		state:  StateEmpty,
		now:    now,
		log:    log,
	}
	if c.draft.PropertyID != "" {
		c.state = StatePropertySelected
	}
	return c
}

// Draft returns a copy of the current selection.
func (c *Controller) Draft() Draft { return c.draft }

// State returns the lifecycle state.
func (c *Controller) State() State { return c.state }

// IsPropertyLocked reports whether the property was pre-selected.
func (c *Controller) IsPropertyLocked() bool { return c.locked }

// Snapshot returns the booked ranges the draft is checked against.
func (c *Controller) Snapshot() availability.Snapshot { return c.snap }

// Adjustments returns every automatic shift made so far.
func (c *Controller) Adjustments() []Adjustment {
	return append([]Adjustment(nil), c.adjustments...)
}

// LastAdjustment returns the shift made by the most recent booked-range
// update, or nil if it made none.
func (c *Controller) LastAdjustment() *Adjustment { return c.lastAdjust }

// Err returns the last error surfaced by Validate or Submit.
func (c *Controller) Err() error { return c.lastErr }

func (c *Controller) closed() bool {
	return c.state == StateCommitted || c.state == StateAbandoned
}

// SetProperties sets the catalog used to price the draft.
func (c *Controller) SetProperties(props []property.Property) {
	c.props = append([]property.Property(nil), props...)
}

// Property returns the selected property from the catalog, or nil.
func (c *Controller) Property() *property.Property {
	if c.draft.PropertyID == "" {
		return nil
	}
	return property.Find(c.props, c.draft.PropertyID)
}

// SelectProperty switches the draft to another property. The previous
// property's booked ranges no longer apply and are dropped.
func (c *Controller) SelectProperty(id string) error {
	if c.closed() {
		return ErrDraftClosed
	}
	if id == c.draft.PropertyID {
		return nil
	}
	if c.locked {
		return ErrPropertyLocked
	}
	c.draft.PropertyID = id
	c.snap = availability.Snapshot{}
	c.lastAdjust = nil
	if id == "" {
		c.state = StateEmpty
	} else {
		c.state = StatePropertySelected
	}
	return nil
}

// OnCheckInChanged applies a check-in edit. If check-out is no longer
// after check-in it is moved to the following day.
func (c *Controller) OnCheckInChanged(d string) {
	if c.closed() {
		return
	}
	c.draft.CheckIn = d
	if c.draft.CheckIn != "" && c.draft.CheckOut != "" &&
		calendar.DaysBetween(c.draft.CheckIn, c.draft.CheckOut) <= 0 {
		next := calendar.AddDays(c.draft.CheckIn, 1)
		c.log.Debug("check-out moved after check-in edit", "check_in", d, "from", c.draft.CheckOut, "to", next)
		c.draft.CheckOut = next
	}
	c.rangeEdited()
}

// OnCheckOutChanged applies a check-out edit. Check-in is never moved.
func (c *Controller) OnCheckOutChanged(d string) {
	if c.closed() {
		return
	}
	c.draft.CheckOut = d
	c.rangeEdited()
}

func (c *Controller) rangeEdited() {
	if c.draft.PropertyID != "" {
		c.state = StateRangeSelected
	}
}

// OnBookedRangesChanged installs a new snapshot and, if the draft now
// overlaps a reservation, shifts check-in to that reservation's
// check-out. The shift happens once; a conflict remaining afterwards is
// left for Validate to report. Snapshots for a property other than the
// current selection are stale and ignored. It reports whether snap was
// applied.
func (c *Controller) OnBookedRangesChanged(snap availability.Snapshot) bool {
	if c.closed() {
		return false
	}
	if snap.PropertyID != c.draft.PropertyID {
		c.log.Debug("discarding stale booked ranges",
			"snapshot_property", snap.PropertyID, "current_property", c.draft.PropertyID)
		return false
	}

	c.snap = snap
	c.lastAdjust = nil

	// A draft without nights is not a range; Validate rejects it as is.
	if c.Nights() <= 0 {
		return true
	}

	conflict := snap.Check(c.draft.Range()).FirstConflictingRange
	if conflict == nil {
		return true
	}

	c.state = StateConflictDetected
	from := c.draft.Range()
	c.draft.CheckIn = conflict.CheckOut
	if calendar.DaysBetween(c.draft.CheckIn, c.draft.CheckOut) <= 0 {
		c.draft.CheckOut = calendar.AddDays(c.draft.CheckIn, 1)
	}

	adj := Adjustment{From: from, To: c.draft.Range(), Because: *conflict}
	c.adjustments = append(c.adjustments, adj)
	c.lastAdjust = &adj
	c.state = StateRangeAdjusted

	c.log.Info("draft moved out of booked range",
		"property_id", c.draft.PropertyID,
		"booked", conflict.String(),
		"from", from.String(),
		"to", adj.To.String(),
	)
	return true
}

// FetchBookedRanges starts loading booked ranges for the currently
// selected property. The result is delivered on the returned channel
// and must be handed to ApplyFetch by the caller.
func (c *Controller) FetchBookedRanges(ctx context.Context, src RangeSource) <-chan RangeFetch {
	id := c.draft.PropertyID
	ch := make(chan RangeFetch, 1)
	if id == "" {
		close(ch)
		return ch
	}
	go func() {
		defer close(ch)
		ranges, err := src.BookedRanges(ctx, id)
		ch <- RangeFetch{PropertyID: id, Ranges: ranges, Err: err}
	}()
	return ch
}

// ApplyFetch applies a fetch result. Results for a property that is no
// longer selected are dropped. A failed fetch is treated as having no
// known reservations; the backend still rejects conflicts on submit.
func (c *Controller) ApplyFetch(f RangeFetch) bool {
	if f.PropertyID == "" {
		return false
	}
	if f.Err != nil {
		c.log.Warn("loading booked ranges failed, continuing without them",
			"property_id", f.PropertyID, "error", f.Err)
		f.Ranges = nil
	}
	return c.OnBookedRangesChanged(availability.NewSnapshot(f.PropertyID, f.Ranges, c.now()))
}

// RefreshBookedRanges fetches and applies booked ranges for the current
// property, waiting for the result.
func (c *Controller) RefreshBookedRanges(ctx context.Context, src RangeSource) bool {
	return c.ApplyFetch(<-c.FetchBookedRanges(ctx, src))
}

// Nights returns the number of nights selected, never negative.
func (c *Controller) Nights() int {
	return c.draft.Range().Nights()
}

// TotalPrice returns nights times the property's nightly rate, or zero
// when no known property is selected.
func (c *Controller) TotalPrice() float64 {
	return c.Quote().Total
}

// Quote returns the derived pricing for the draft.
func (c *Controller) Quote() Quote {
	q := Quote{Nights: c.Nights()}
	if p := c.Property(); p != nil {
		q.Property = p
		q.PricePerNight = p.PricePerNight
		q.Total = float64(q.Nights) * p.PricePerNight
	}
	return q
}

// Validate runs the local checks in order and returns the first failure:
// no property, check-in before today, no nights, then a known overlap.
func (c *Controller) Validate() error {
	if c.closed() {
		return ErrDraftClosed
	}
	var err error
	switch {
	case c.draft.PropertyID == "":
		err = &ValidationError{Reason: ReasonNoProperty}
	case calendar.DaysBetween(calendar.Today(c.now), c.draft.CheckIn) < 0:
		err = &ValidationError{Reason: ReasonPastCheckIn}
	case c.Nights() <= 0:
		err = &ValidationError{Reason: ReasonNonPositiveNights}
	default:
		if conflict := c.conflict(); conflict != nil {
			err = &ValidationError{Reason: ReasonOverlap, Conflict: conflict}
		}
	}
	c.lastErr = err
	if err == nil {
		c.state = StateValidated
	}
	return err
}

func (c *Controller) conflict() *availability.BookedRange {
	if c.snap.PropertyID != c.draft.PropertyID {
		return nil
	}
	return availability.FindConflict(c.draft.Range(), c.snap.Ranges)
}

// Request returns the create-booking payload for the draft.
func (c *Controller) Request() Request {
	return Request{
		PropertyID: c.draft.PropertyID,
		CheckIn:    c.draft.CheckIn,
		CheckOut:   c.draft.CheckOut,
	}
}

// ReturnPath is the location that reopens this draft with its fields
// filled in.
func (c *Controller) ReturnPath() string {
	q := url.Values{}
	if c.draft.PropertyID != "" {
		q.Set("property_id", c.draft.PropertyID)
	}
	if c.draft.CheckIn != "" {
		q.Set("check_in", c.draft.CheckIn)
	}
	if c.draft.CheckOut != "" {
		q.Set("check_out", c.draft.CheckOut)
	}
	if len(q) == 0 {
		return NewBookingPath
	}
	return NewBookingPath + "?" + q.Encode()
}

// Submit creates the booking. A signed-out user gets an AuthError and a
// draft failing local checks gets a ValidationError; neither reaches the
// backend. Backend failures are classified and leave the draft intact
// for another attempt. On success the draft is discarded.
func (c *Controller) Submit(ctx context.Context, gw Creator, sess *session.Session) (*Booking, error) {
	if c.closed() {
		return nil, ErrDraftClosed
	}
	if !sess.SignedIn() {
		err := newAuthError(c.ReturnPath(), nil)
		c.lastErr = err
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	c.state = StateSubmitting
	b, err := gw.CreateBooking(ctx, c.Request())
	if err != nil {
		cerr := Classify(err, c.ReturnPath())
		c.lastErr = cerr
		c.state = StateRejected
		c.log.Warn("booking rejected", "property_id", c.draft.PropertyID, "error", err)
		return nil, cerr
	}
	if b == nil {
		req := c.Request()
		b = &Booking{PropertyID: req.PropertyID, CheckIn: req.CheckIn, CheckOut: req.CheckOut}
	}

	c.log.Info("booking created", "booking_id", b.ID, "property_id", b.PropertyID)
	c.state = StateCommitted
	c.lastErr = nil
	c.draft = Draft{}
	c.snap = availability.Snapshot{}
	return b, nil
}

// Discard abandons the draft without submitting it.
func (c *Controller) Discard() {
	if c.state == StateCommitted {
		return
	}
	c.state = StateAbandoned
	c.draft = Draft{}
	c.snap = availability.Snapshot{}
}

func newAuthError(returnPath string, err error) *AuthError {
	return &AuthError{
		ReturnPath: returnPath,
		SignInPath: session.SignInPath(returnPath),
		Err:        err,
	}
}
