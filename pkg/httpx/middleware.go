package httpx

import "net/http"

// Middleware is a composable step over an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares to a handler as an explicit ordered pipeline:
// the first middleware listed is the first to see the request, and any step
// that fails short-circuits everything after it. Keeping the list literal at
// the call site makes ordering statically inspectable.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
