// Package context carries per-request values between middleware and the
// layers below without widening their signatures.
package context

import "context"

// contextKey is unexported so other packages cannot collide with ours.
type contextKey string

const requestIDKey contextKey = "request_id"

// WithRequestID returns a child context tagged with the request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns the request id, or "" when none was set.
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
