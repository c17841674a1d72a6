// Package session holds the signed-in user for one client run.
//
// A Session is loaded once and passed explicitly to whatever needs it.
// There is no package-level current user.
package session

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"
)

// Roles a user can hold on the marketplace.
const (
	RoleGuest = "guest"
	RoleHost  = "host"
)

var (
	// ErrNotSignedIn is returned when an operation needs a user and there is none.
	ErrNotSignedIn = errors.New("you must be signed in")
	// ErrNotHost is returned when a guest attempts a host-only operation.
	ErrNotHost = errors.New("only hosts can manage listings")
)

// User is the account returned by the backend's /auth/me.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// IsHost reports whether the user can manage listings.
func (u *User) IsHost() bool { return u != nil && u.Role == RoleHost }

// IsGuest reports whether the user books stays.
func (u *User) IsGuest() bool { return u != nil && u.Role == RoleGuest }

// UserSource resolves the current user. A nil user with a nil error
// means nobody is signed in.
type UserSource interface {
	CurrentUser(ctx context.Context) (*User, error)
}

// Session is a snapshot of who is signed in.
type Session struct {
	User     *User
	LoadedAt time.Time
}

// Load resolves the current user once. Lookup failures are treated as
// signed out and logged, so callers always get a usable session.
func Load(ctx context.Context, src UserSource) *Session {
	s := &Session{}
	s.Refresh(ctx, src)
	return s
}

// Refresh re-reads the current user from src.
func (s *Session) Refresh(ctx context.Context, src UserSource) {
	u, err := src.CurrentUser(ctx)
	if err != nil {
		slog.Debug("resolving current user failed, treating as signed out", "error", err)
		u = nil
	}
	s.User = u
	s.LoadedAt = time.Now()
}

// SignedIn reports whether the session has a user.
func (s *Session) SignedIn() bool {
	return s != nil && s.User != nil
}

// RequireHost returns an error unless the session belongs to a host.
func RequireHost(s *Session) error {
	if !s.SignedIn() {
		return ErrNotSignedIn
	}
	if !s.User.IsHost() {
		return ErrNotHost
	}
	return nil
}

// SignInPath returns the sign-in location that returns to next afterwards.
func SignInPath(next string) string {
	return withNext("/login", next)
}

// RegisterPath returns the sign-up location that returns to next afterwards.
func RegisterPath(next string) string {
	return withNext("/register", next)
}

func withNext(base, next string) string {
	if next == "" {
		return base
	}
	return base + "?next=" + url.QueryEscape(next)
}
