package counterpage

import (
	"context"
	"net/http"
)

type contextKey struct{}

// Context is the request-scoped context passed to the page handler.
// It carries the request ID and a logger tagged with it.
type Context struct {
	Log       *Logger
	Request   *http.Request
	RequestID string
}

// NewContext creates a Context for the given HTTP request.
func NewContext(r *http.Request, log *Logger, requestID string) *Context {
	return &Context{
		Log:       log.With("request_id", requestID),
		Request:   r,
		RequestID: requestID,
	}
}

// WithContext returns a copy of r carrying c.
func WithContext(r *http.Request, c *Context) *http.Request {
	c.Request = r.WithContext(context.WithValue(r.Context(), contextKey{}, c))
	return c.Request
}

// FromRequest returns the Context stored by the request middleware, or a
// fresh one logging through fallback when the middleware did not run.
func FromRequest(r *http.Request, fallback *Logger) *Context {
	if c, ok := r.Context().Value(contextKey{}).(*Context); ok {
		return c
	}
	return &Context{Log: fallback, Request: r}
}
