package testutil

import (
	"net/http"
	"time"

	"pulse/pkg/requestcontext"
)

// AsUser sets the acting-user header the identity middleware reads. Use it
// when driving a full router; for bare handlers use WithUserContext.
func AsUser(req *http.Request, userID string) *http.Request {
	req.Header.Set("X-User-ID", userID)
	return req
}

// WithUserContext injects the acting user directly into the request context,
// simulating what the identity middleware does after resolving the header.
func WithUserContext(req *http.Request, userID string) *http.Request {
	return req.WithContext(requestcontext.WithUserID(req.Context(), userID))
}

// WithRequestTime pins the request-scoped clock for deterministic timestamps.
func WithRequestTime(req *http.Request, at time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), at))
}
