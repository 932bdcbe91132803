package testutil

import (
	"context"
	"net/http"

	"veriseq/internal/platform/middleware"
)

// WithOperator adds an operator identity to the request context, simulating
// what the auth middleware does for authenticated requests.
func WithOperator(req *http.Request, operator, role string) *http.Request {
	ctx := req.Context()
	if operator != "" {
		ctx = context.WithValue(ctx, middleware.ContextKeyOperator, operator)
	}
	if role != "" {
		ctx = context.WithValue(ctx, middleware.ContextKeyRole, role)
	}
	return req.WithContext(ctx)
}

// WithRequestID adds a request ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.ContextKeyRequestID, requestID)
	return req.WithContext(ctx)
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
