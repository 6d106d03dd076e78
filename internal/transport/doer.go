// Package transport wraps the outgoing HTTP call in explicit decorators so the
// session concerns (bearer header, 401 handling) stay testable without globals.
package transport

import (
	"net/http"
	"time"
)

// DefaultTimeout is the fixed request deadline
const DefaultTimeout = 10 * time.Second

// Doer sends a request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a function to Doer
type DoerFunc func(req *http.Request) (*http.Response, error)

func (f DoerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

// Middleware decorates a Doer
type Middleware func(Doer) Doer

// Chain wraps base so the first middleware is the outermost.
func Chain(base Doer, mws ...Middleware) Doer {
	d := base
	for i := len(mws) - 1; i >= 0; i-- {
		d = mws[i](d)
	}
	return d
}

// NewHTTPClient returns the base doer with the request deadline applied.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
