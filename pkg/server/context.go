package server

import "context"

// contextKey scopes context values set by the middleware chain.
type contextKey string

const (
	contextKeyRequestID  contextKey = "requestID"
	contextKeyAPIVersion contextKey = "apiVersion"
)

// RequestIDFrom returns the request id assigned by the middleware chain,
// or the empty string when the request never passed through it.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(contextKeyRequestID).(string)
	return id
}

// APIVersionFrom returns the negotiated API version for the request,
// falling back to DefaultAPIVersion when negotiation has not run.
func APIVersionFrom(ctx context.Context) string {
	v, _ := ctx.Value(contextKeyAPIVersion).(string)
	if v == "" {
		return DefaultAPIVersion
	}
	return v
}
