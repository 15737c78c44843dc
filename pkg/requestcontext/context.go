// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware and event listeners set these values; services read them. Keeping
// the package free of net/http lets the deallocation engine and statistics
// calculator use the same accessors whether they were reached from an HTTP
// request or a queue message.
//
// Usage in services (read values):
//
//	username := requestcontext.Username(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"slices"
	"time"
)

// SystemUsername is recorded as the actor for changes made in reaction to
// domain events rather than by a person.
const SystemUsername = "SYS"

type (
	usernameKey    struct{}
	rolesKey       struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyUsername    = usernameKey{}
	ContextKeyRoles       = rolesKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// Username returns the authenticated username, or SystemUsername when the
// context did not come from an authenticated request.
func Username(ctx context.Context) string {
	if u, ok := ctx.Value(ContextKeyUsername).(string); ok && u != "" {
		return u
	}
	return SystemUsername
}

// WithUsername injects a username into the context.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, ContextKeyUsername, username)
}

// Roles returns the authorities granted to the caller.
func Roles(ctx context.Context) []string {
	if r, ok := ctx.Value(ContextKeyRoles).([]string); ok {
		return r
	}
	return nil
}

// HasRole reports whether the caller holds role.
func HasRole(ctx context.Context, role string) bool {
	return slices.Contains(Roles(ctx), role)
}

// WithRoles injects caller roles into the context.
func WithRoles(ctx context.Context, roles []string) context.Context {
	return context.WithValue(ctx, ContextKeyRoles, roles)
}

// RequestID retrieves the request or message correlation id.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a correlation id into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (workers, scheduler, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
