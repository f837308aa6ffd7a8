package testutil

import (
	"net/http"

	"authgate/pkg/requestcontext"
)

// WithIdentity attaches id to the request context the way RequireAuth does.
func WithIdentity(req *http.Request, id requestcontext.Identity) *http.Request {
	return req.WithContext(requestcontext.WithIdentity(req.Context(), id))
}

// WithRequestID attaches a request id to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
