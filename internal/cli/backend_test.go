package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/evcraddock/staybook/internal/availability"
	"github.com/evcraddock/staybook/internal/booking"
	"github.com/evcraddock/staybook/internal/property"
	"github.com/evcraddock/staybook/internal/session"
)

// fakeBackend is an in-memory marketplace API.
type fakeBackend struct {
	t *testing.T

	mu           sync.Mutex
	user         *session.User
	props        []property.Property
	hidden       map[string]property.Property
	ranges       map[string][]availability.BookedRange
	bookings     []booking.Booking
	createStatus int
	createError  string
	created      []booking.Request
	saved        []property.Input
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	return &fakeBackend{
		t:      t,
		user:   &session.User{ID: "u1", Email: "guest@example.com", Role: session.RoleGuest},
		hidden: map[string]property.Property{},
		ranges: map[string][]availability.BookedRange{},
		props: []property.Property{
			{ID: "p1", Title: "Sea view cabin", Location: "Visby", PricePerNight: 500, IsActive: true},
			{ID: "p2", Title: "City loft", Location: "Stockholm", PricePerNight: 1200, IsActive: true},
		},
	}
}

// start serves the backend and points the CLI at it with a stored session.
// Booking drafts see 2024-06-01 as today.
func (b *fakeBackend) start() *httptest.Server {
	b.t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(b.serve))
	b.t.Cleanup(srv.Close)

	b.t.Setenv("HOME", b.t.TempDir())
	b.t.Setenv("SB_SERVER_URL", srv.URL)
	b.t.Setenv("SB_SESSION", "sb_session=test")
	b.t.Setenv("SB_STORAGE_URL", "https://cdn.example.com")

	old := clock
	clock = func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }
	b.t.Cleanup(func() { clock = old })
	return srv
}

func (b *fakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	path := r.URL.Path
	switch {
	case r.Method == "GET" && path == "/auth/me":
		if b.user == nil {
			b.reply(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		b.reply(w, http.StatusOK, b.user)
	case r.Method == "GET" && path == "/properties":
		b.reply(w, http.StatusOK, map[string]interface{}{"data": b.props})
	case r.Method == "GET" && path == "/properties/mine":
		var mine []property.Property
		for _, p := range b.props {
			if p.OwnerID == b.user.ID {
				mine = append(mine, p)
			}
		}
		b.reply(w, http.StatusOK, map[string]interface{}{"data": mine})
	case r.Method == "GET" && strings.HasSuffix(path, "/booked-ranges"):
		id := strings.TrimSuffix(strings.TrimPrefix(path, "/properties/"), "/booked-ranges")
		b.reply(w, http.StatusOK, map[string]interface{}{"data": b.ranges[id]})
	case r.Method == "GET" && strings.HasPrefix(path, "/properties/"):
		id := strings.TrimPrefix(path, "/properties/")
		if p := property.Find(b.props, id); p != nil {
			b.reply(w, http.StatusOK, map[string]interface{}{"data": p})
			return
		}
		if p, ok := b.hidden[id]; ok {
			b.reply(w, http.StatusOK, map[string]interface{}{"data": p})
			return
		}
		b.reply(w, http.StatusNotFound, map[string]string{"error": "Property not found"})
	case r.Method == "POST" && path == "/properties",
		r.Method == "PATCH" && strings.HasPrefix(path, "/properties/"):
		var in property.Input
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			b.t.Errorf("decode property: %v", err)
		}
		b.saved = append(b.saved, in)
		id := strings.TrimPrefix(path, "/properties")
		id = strings.TrimPrefix(id, "/")
		if id == "" {
			id = "new1"
		}
		b.reply(w, http.StatusOK, map[string]interface{}{
			"data": property.Property{ID: id, Title: in.Title, PricePerNight: in.PricePerNight, IsActive: in.IsActive},
		})
	case r.Method == "GET" && path == "/bookings":
		b.reply(w, http.StatusOK, map[string]interface{}{"data": b.bookings})
	case r.Method == "POST" && path == "/bookings":
		var req booking.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			b.t.Errorf("decode booking: %v", err)
		}
		b.created = append(b.created, req)
		if b.createStatus != 0 {
			b.reply(w, b.createStatus, map[string]string{"error": b.createError})
			return
		}
		b.reply(w, http.StatusCreated, map[string]interface{}{
			"data": booking.Booking{ID: "bk1", PropertyID: req.PropertyID, CheckIn: req.CheckIn, CheckOut: req.CheckOut},
		})
	case r.Method == "POST" && path == "/storage/upload":
		_, hdr, err := r.FormFile("file")
		if err != nil {
			b.t.Errorf("form file: %v", err)
			return
		}
		b.reply(w, http.StatusOK, map[string]string{"path": r.FormValue("folder") + "/" + hdr.Filename})
	default:
		b.t.Errorf("unexpected request %s %s", r.Method, path)
		w.WriteHeader(http.StatusNotFound)
	}
}

func (b *fakeBackend) reply(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		b.t.Errorf("encode: %v", err)
	}
}

func (b *fakeBackend) createdBookings() []booking.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]booking.Request(nil), b.created...)
}

// captureOutput redirects command output into a buffer for the test.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	old := stdout
	stdout = buf
	t.Cleanup(func() { stdout = old })
	return buf
}
