package cli

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/evcraddock/staybook/internal/booking"
	"github.com/evcraddock/staybook/internal/property"
	"github.com/evcraddock/staybook/internal/session"
)

func TestBookingsJoinsProperties(t *testing.T) {
	be := newFakeBackend(t)
	be.hidden["p9"] = property.Property{ID: "p9", Title: "Retired barn", IsActive: false}
	be.bookings = []booking.Booking{
		{ID: "b1", PropertyID: "p1", CheckIn: "2024-06-01", CheckOut: "2024-06-04", TotalPrice: 1500},
		{ID: "b2", PropertyID: "p9", CheckIn: "2024-07-01", CheckOut: "2024-07-03", TotalPrice: 800},
		{ID: "b3", PropertyID: "gone", CheckIn: "2024-08-01", CheckOut: "2024-08-02", TotalPrice: 100},
	}
	be.start()
	out := captureOutput(t)

	if _, err := executeCommand("bookings", "--format", "json"); err != nil {
		t.Fatalf("bookings: %v", err)
	}

	var got []booking.Summary
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, out.String())
	}
	if len(got) != 3 {
		t.Fatalf("got %d summaries", len(got))
	}
	wantTitles := []string{"Sea view cabin", "Retired barn", booking.UnknownTitle}
	for i, want := range wantTitles {
		if got[i].Title != want {
			t.Errorf("summary[%d].Title = %q, want %q", i, got[i].Title, want)
		}
	}
	if got[0].Nights != 3 {
		t.Errorf("nights = %d, want 3", got[0].Nights)
	}
}

func TestBookingsTable(t *testing.T) {
	be := newFakeBackend(t)
	be.bookings = []booking.Booking{
		{ID: "b1", PropertyID: "p2", CheckIn: "2024-06-01", CheckOut: "2024-06-03", TotalPrice: 2400},
	}
	be.start()
	out := captureOutput(t)

	if _, err := executeCommand("bookings"); err != nil {
		t.Fatalf("bookings: %v", err)
	}
	for _, s := range []string{"City loft", "Jun 1, 2024", "2,400"} {
		if !strings.Contains(out.String(), s) {
			t.Errorf("expected %q in output:\n%s", s, out.String())
		}
	}
}

func TestBookingsRequiresSignIn(t *testing.T) {
	be := newFakeBackend(t)
	be.user = nil
	be.start()
	captureOutput(t)

	_, err := executeCommand("bookings")
	if !errors.Is(err, session.ErrNotSignedIn) {
		t.Errorf("err = %v, want ErrNotSignedIn", err)
	}
}

func TestFetchMissingContinuesPastFailures(t *testing.T) {
	be := newFakeBackend(t)
	be.hidden["p9"] = property.Property{ID: "p9", Title: "Retired barn"}
	be.hidden["p8"] = property.Property{ID: "p8", Title: "Old mill"}
	be.start()

	bookings := []booking.Booking{
		{ID: "b1", PropertyID: "gone"},
		{ID: "b2", PropertyID: "p9"},
		{ID: "b3", PropertyID: "p8"},
	}
	props := map[string]property.Property{}

	err := fetchMissing(context.Background(), newAPIClient(), bookings, props)
	if err == nil || !strings.Contains(err.Error(), "property gone") {
		t.Errorf("err = %v, want failure for the missing listing", err)
	}
	if props["p9"].Title != "Retired barn" || props["p8"].Title != "Old mill" {
		t.Errorf("props = %+v, want both hidden listings loaded", props)
	}
	if _, ok := props["gone"]; ok {
		t.Error("failed lookup added a listing")
	}
}

func TestFetchMissingNothingToDo(t *testing.T) {
	props := map[string]property.Property{"p1": {ID: "p1"}}
	bookings := []booking.Booking{{ID: "b1", PropertyID: "p1"}}

	if err := fetchMissing(context.Background(), nil, bookings, props); err != nil {
		t.Errorf("fetchMissing() = %v", err)
	}
}
