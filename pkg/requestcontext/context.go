// Package requestcontext carries request-scoped values through context. All
// operations within a single request observe the same "now" timestamp, so a
// loan created and returned in different requests still gets consistent
// start, return, and lateness calculations within each request.
package requestcontext

import (
	"context"
	"time"
)

type timeKey struct{}

type requestIDKey struct{}

// WithTime injects the request-scoped time.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, timeKey{}, t)
}

// Now returns the request-scoped time, falling back to the wall clock when
// the context was not built by the middleware (background workers, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(timeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithRequestID injects a correlation ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the correlation ID or empty when not set.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
