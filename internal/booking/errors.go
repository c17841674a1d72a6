package booking

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/evcraddock/staybook/internal/availability"
)

// Messages shown to the user, inline with the form.
const (
	MsgChooseProperty       = "choose a property first"
	MsgCheckInInPast        = "check-in cannot be in the past"
	MsgCheckOutAfterCheckIn = "check-out must be after check-in"
	MsgDatesConflict        = "dates conflict with an existing booking"
	MsgSignInRequired       = "you must be signed in to create a booking"
)

var (
	// ErrPropertyLocked is returned when changing a pre-selected property.
	ErrPropertyLocked = errors.New("property was pre-selected and cannot be changed")
	// ErrDraftClosed is returned when using a committed or abandoned draft.
	ErrDraftClosed = errors.New("booking draft is closed")
)

// Reason identifies which local check rejected a draft.
type Reason string

const (
	ReasonNoProperty        Reason = "no_property"
	ReasonPastCheckIn       Reason = "past_check_in"
	ReasonNonPositiveNights Reason = "non_positive_nights"
	ReasonOverlap           Reason = "overlap"
)

// ValidationError is a local rejection. It never reaches the backend.
type ValidationError struct {
	Reason   Reason
	Conflict *availability.BookedRange
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonNoProperty:
		return MsgChooseProperty
	case ReasonPastCheckIn:
		return MsgCheckInInPast
	case ReasonNonPositiveNights:
		return MsgCheckOutAfterCheckIn
	case ReasonOverlap:
		return MsgDatesConflict
	default:
		return string(e.Reason)
	}
}

// ConflictError means the backend refused the booking because the dates
// were taken, typically by a booking accepted after our snapshot.
type ConflictError struct {
	Err error
}

func (e *ConflictError) Error() string { return MsgDatesConflict }
func (e *ConflictError) Unwrap() error { return e.Err }

// AuthError means the user must sign in first. ReturnPath restores the
// draft after signing in.
type AuthError struct {
	ReturnPath string
	SignInPath string
	Err        error
}

func (e *AuthError) Error() string { return MsgSignInRequired }
func (e *AuthError) Unwrap() error { return e.Err }

// TransportError is any other failure talking to the backend.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("could not create booking: %v", e.Err)
}
func (e *TransportError) Unwrap() error { return e.Err }

// StatusCoder is implemented by gateway errors that carry an HTTP status.
type StatusCoder interface {
	StatusCode() int
}

// overlapIndicators are substrings the backend uses when it refuses
// overlapping dates.
var overlapIndicators = []string{
	"overlap",
	"conflict",
	"already booked",
}

// Classify sorts a gateway failure into ConflictError, AuthError or
// TransportError. signInNext is where an AuthError should return to.
func Classify(err error, signInNext string) error {
	if err == nil {
		return nil
	}

	var status int
	var sc StatusCoder
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return &TransportError{Err: err}
	case status == http.StatusConflict:
		return &ConflictError{Err: err}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return newAuthError(signInNext, err)
	case hasOverlapIndicator(err.Error()):
		return &ConflictError{Err: err}
	default:
		return &TransportError{Err: err}
	}
}

// UserMessage returns the inline message for err.
func UserMessage(err error) string {
	var (
		ve *ValidationError
		ce *ConflictError
		ae *AuthError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Error()
	case errors.As(err, &ce):
		return MsgDatesConflict
	case errors.As(err, &ae):
		return MsgSignInRequired
	default:
		return err.Error()
	}
}

func hasOverlapIndicator(msg string) bool {
	lower := strings.ToLower(msg)
	for _, ind := range overlapIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}
