package logging

import (
	"log/slog"
	"net/http"
	"time"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Transport is an http.RoundTripper that logs each request made through it.
type Transport struct {
	// Base is the underlying transport. http.DefaultTransport when nil.
	Base http.RoundTripper
	// Logger receives the entries. slog.Default() when nil.
	Logger *slog.Logger
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	logger := t.Logger
	if logger == nil {
		logger = slog.Default()
	}

	start := time.Now()
	resp, err := base.RoundTrip(req)
	duration := time.Since(start)

	attrs := []any{
		"method", req.Method,
		"path", req.URL.Path,
		"duration", duration.String(),
	}
	if id := req.Header.Get(RequestIDHeader); id != "" {
		attrs = append(attrs, "request_id", id)
	}

	if err != nil {
		logger.Log(req.Context(), slog.LevelWarn, "request failed", append(attrs, "error", err)...)
		return nil, err
	}

	level := slog.LevelDebug
	if resp.StatusCode >= 500 {
		level = slog.LevelError
	} else if resp.StatusCode >= 400 {
		level = slog.LevelWarn
	}
	logger.Log(req.Context(), level, "request", append(attrs, "status", resp.StatusCode)...)
	return resp, nil
}
