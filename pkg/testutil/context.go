package testutil

import (
	"net/http"

	"keyworker/pkg/requestcontext"
)

// WithUser puts the caller on the request context the way the auth
// middleware does.
func WithUser(req *http.Request, username string, roles ...string) *http.Request {
	ctx := requestcontext.WithUsername(req.Context(), username)
	return req.WithContext(requestcontext.WithRoles(ctx, roles))
}
