// Package client provides an HTTP client for the staybook marketplace API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"github.com/evcraddock/staybook/internal/availability"
	"github.com/evcraddock/staybook/internal/booking"
	"github.com/evcraddock/staybook/internal/logging"
	"github.com/evcraddock/staybook/internal/property"
	"github.com/evcraddock/staybook/internal/session"
)

// ErrNotFound is matched by any 404 response.
var ErrNotFound = errors.New("not found")

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// StatusCode returns the HTTP status of the response.
func (e *APIError) StatusCode() int { return e.Status }

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// Client is an HTTP client for the marketplace API.
type Client struct {
	baseURL    string
	session    string
	httpClient *http.Client
	retryWait  time.Duration
	maxTries   uint
}

var _ booking.Gateway = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithRetryWait sets the initial delay between GET retries.
func WithRetryWait(d time.Duration) Option {
	return func(c *Client) { c.retryWait = d }
}

// New creates a new API client. session is the cookie header value from
// a previous login and may be empty.
func New(baseURL, session string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		session: session,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: &logging.Transport{},
		},
		retryWait: 250 * time.Millisecond,
		maxTries:  3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the cookie the client authenticates with.
func (c *Client) Session() string { return c.session }

// envelope is the backend's response wrapper.
type envelope[T any] struct {
	Data T `json:"data"`
}

// ListProperties returns every listing.
func (c *Client) ListProperties(ctx context.Context) ([]property.Property, error) {
	var resp envelope[[]property.Property]
	if err := c.get(ctx, "/properties", &resp); err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	return resp.Data, nil
}

// GetProperty returns one listing. A missing listing matches ErrNotFound.
func (c *Client) GetProperty(ctx context.Context, id string) (*property.Property, error) {
	var resp envelope[*property.Property]
	if err := c.get(ctx, "/properties/"+url.PathEscape(id), &resp); err != nil {
		return nil, fmt.Errorf("getting property %s: %w", id, err)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("getting property %s: %w", id, ErrNotFound)
	}
	return resp.Data, nil
}

// ListMyProperties returns the signed-in host's listings.
func (c *Client) ListMyProperties(ctx context.Context) ([]property.Property, error) {
	var resp envelope[[]property.Property]
	if err := c.get(ctx, "/properties/mine", &resp); err != nil {
		return nil, fmt.Errorf("listing my properties: %w", err)
	}
	return resp.Data, nil
}

// CreateProperty adds a listing.
func (c *Client) CreateProperty(ctx context.Context, in property.Input) (*property.Property, error) {
	var resp envelope[*property.Property]
	if err := c.send(ctx, http.MethodPost, "/properties", in, &resp); err != nil {
		return nil, fmt.Errorf("creating property: %w", err)
	}
	return resp.Data, nil
}

// UpdateProperty edits a listing.
func (c *Client) UpdateProperty(ctx context.Context, id string, in property.Input) (*property.Property, error) {
	var resp envelope[*property.Property]
	if err := c.send(ctx, http.MethodPatch, "/properties/"+url.PathEscape(id), in, &resp); err != nil {
		return nil, fmt.Errorf("updating property %s: %w", id, err)
	}
	return resp.Data, nil
}

// BookedRanges returns the reserved date ranges of a property, each
// tagged with propertyID.
func (c *Client) BookedRanges(ctx context.Context, propertyID string) ([]availability.BookedRange, error) {
	var resp envelope[[]availability.BookedRange]
	path := "/properties/" + url.PathEscape(propertyID) + "/booked-ranges"
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("loading booked ranges: %w", err)
	}
	for i := range resp.Data {
		resp.Data[i].PropertyID = propertyID
	}
	return resp.Data, nil
}

// CreateBooking submits a booking. It is never retried.
func (c *Client) CreateBooking(ctx context.Context, req booking.Request) (*booking.Booking, error) {
	var resp envelope[*booking.Booking]
	if err := c.send(ctx, http.MethodPost, "/bookings", req, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return &booking.Booking{PropertyID: req.PropertyID, CheckIn: req.CheckIn, CheckOut: req.CheckOut}, nil
	}
	return resp.Data, nil
}

// ListBookings returns the signed-in user's bookings.
func (c *Client) ListBookings(ctx context.Context) ([]booking.Booking, error) {
	var resp envelope[[]booking.Booking]
	if err := c.get(ctx, "/bookings", &resp); err != nil {
		return nil, fmt.Errorf("listing bookings: %w", err)
	}
	return resp.Data, nil
}

// CurrentUser returns the signed-in user, or nil if the session is not
// authenticated.
func (c *Client) CurrentUser(ctx context.Context) (*session.User, error) {
	var raw json.RawMessage
	err := c.get(ctx, "/auth/me", &raw)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading current user: %w", err)
	}
	return decodeUser(raw)
}

// decodeUser accepts both a bare user object and one wrapped in data.
func decodeUser(raw json.RawMessage) (*session.User, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var wrapped envelope[*session.User]
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Data != nil {
		return wrapped.Data, nil
	}
	var u session.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decoding user: %w", err)
	}
	if u.ID == "" && u.Email == "" {
		return nil, nil
	}
	return &u, nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// Login signs in and returns the session cookie set by the backend. The
// client uses the new session for subsequent requests.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	resp, _, err := c.roundTrip(ctx, http.MethodPost, "/auth/login", credentials{Email: email, Password: password})
	if err != nil {
		return "", fmt.Errorf("logging in: %w", err)
	}

	var pairs []string
	for _, ck := range resp.Cookies() {
		pairs = append(pairs, ck.Name+"="+ck.Value)
	}
	if len(pairs) == 0 {
		return "", fmt.Errorf("logging in: no session cookie in response")
	}
	c.session = strings.Join(pairs, "; ")
	return c.session, nil
}

// Logout ends the session on the backend.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.send(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("logging out: %w", err)
	}
	c.session = ""
	return nil
}

// Register creates an account. role may be empty for the backend default.
func (c *Client) Register(ctx context.Context, email, password, role string) error {
	body := credentials{Email: email, Password: password, Role: role}
	if err := c.send(ctx, http.MethodPost, "/auth/register", body, nil); err != nil {
		return fmt.Errorf("registering: %w", err)
	}
	return nil
}

// get performs a GET request and decodes the response. Transient
// failures are retried with exponential backoff.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	requestID := uuid.NewString()
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryWait

	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		_, body, err := c.roundTripID(ctx, http.MethodGet, path, nil, requestID)
		if err != nil && !retryable(ctx, err) {
			return nil, backoff.Permanent(err)
		}
		return body, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(c.maxTries))
	if err != nil {
		return err
	}
	return decode(body, result)
}

// send performs a single request with a JSON body and decodes the response.
func (c *Client) send(ctx context.Context, method, path string, body, result interface{}) error {
	_, respBody, err := c.roundTrip(ctx, method, path, body)
	if err != nil {
		return err
	}
	return decode(respBody, result)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body interface{}) (*http.Response, []byte, error) {
	return c.roundTripID(ctx, method, path, body, uuid.NewString())
}

// roundTripID executes one HTTP request with session and request id
// headers and turns error statuses into *APIError.
func (c *Client) roundTripID(ctx context.Context, method, path string, body interface{}, requestID string) (*http.Response, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(logging.RequestIDHeader, requestID)
	if c.session != "" {
		req.Header.Set("Cookie", c.session)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("closing response body", "error", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return resp, nil, newAPIError(resp, respBody)
	}
	return resp, respBody, nil
}

func newAPIError(resp *http.Response, body []byte) *APIError {
	var errResp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return &APIError{Status: resp.StatusCode, Message: errResp.Error}
	}
	return &APIError{
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}

func decode(body []byte, result interface{}) error {
	if result == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// retryable reports whether a GET failure is worth another attempt:
// network errors and gateway-type statuses.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
