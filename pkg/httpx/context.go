package httpx

import (
	"context"
	"net"
	"net/http"
	"strings"
)

// RequestContext is the ephemeral per-request identity derived from a verified
// access token. It lives only in the request's context.Context and is never
// persisted.
type RequestContext struct {
	UserID     string
	EmployeeID string
	Role       string
	IPAddress  string
	UserAgent  string
}

type ctxKey struct{}

// ContextWith attaches a RequestContext to ctx.
func ContextWith(ctx context.Context, rc RequestContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, rc)
}

// FromContext returns the RequestContext, if the request was authenticated.
func FromContext(ctx context.Context) (RequestContext, bool) {
	rc, ok := ctx.Value(ctxKey{}).(RequestContext)
	return rc, ok
}

// ClientIP extracts the originating client address, honouring proxy headers.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if first, _, ok := strings.Cut(xff, ","); ok {
			return strings.TrimSpace(first)
		}
		return strings.TrimSpace(xff)
	}
	if rip := r.Header.Get("X-Real-IP"); rip != "" {
		return strings.TrimSpace(rip)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
