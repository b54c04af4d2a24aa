package testutil

import (
	"context"
	"net/http"

	"capture-gateway/internal/platform/middleware"
)

// WithReviewer seeds the authenticated reviewer identity into a request
// context, simulating what the auth middleware does for valid tokens.
func WithReviewer(req *http.Request, reviewerID, clientID string) *http.Request {
	ctx := req.Context()
	if reviewerID != "" {
		ctx = context.WithValue(ctx, middleware.ContextKeyReviewerID, reviewerID)
	}
	if clientID != "" {
		ctx = context.WithValue(ctx, middleware.ContextKeyClientID, clientID)
	}
	return req.WithContext(ctx)
}

// WithRequestID attaches a correlation id to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ContextKeyRequestID, requestID)
	return req.WithContext(ctx)
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
