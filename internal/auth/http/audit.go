package http

import (
	"context"
	"net/http"

	"github.com/hrflowhq/hrflow/internal/auth/domain"
	"github.com/hrflowhq/hrflow/internal/auth/service"
	"github.com/hrflowhq/hrflow/pkg/httpx"
)

// AuditValues lets a handler contribute details the middleware cannot see:
// the acting user on unauthenticated routes (login) and before/after
// snapshots on mutations. The middleware plants a holder in the request
// context before the handler runs and reads it after.
type AuditValues struct {
	UserID     string
	ResourceID string
	OldValues  string // JSON
	NewValues  string // JSON
}

type auditKey struct{}

// SetAuditValues records handler-supplied audit details for the current
// request. No-op when the route has no audit middleware.
func SetAuditValues(ctx context.Context, fn func(v *AuditValues)) {
	if v, ok := ctx.Value(auditKey{}).(*AuditValues); ok {
		fn(v)
	}
}

// statusWriter captures the response status so the middleware can decide
// whether the operation succeeded.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Audit records an entry after the handler completes, and only for 2xx
// responses: failed or rejected requests leave no audit trail. Recording is
// asynchronous and cannot delay or fail the response, which has already been
// written by the time the entry is enqueued.
func Audit(rec *service.AuditRecorder, action domain.AuditAction, resource string) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			vals := &AuditValues{}
			r = r.WithContext(context.WithValue(r.Context(), auditKey{}, vals))

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			if sw.status < 200 || sw.status >= 300 {
				return
			}

			userID := vals.UserID
			if rc, ok := httpx.FromContext(r.Context()); ok && userID == "" {
				userID = rc.UserID
			}

			rec.Record(domain.AuditLogEntry{
				UserID:     userID,
				Action:     action,
				Resource:   resource,
				ResourceID: vals.ResourceID,
				OldValues:  vals.OldValues,
				NewValues:  vals.NewValues,
				Metadata: domain.AuditMetadata{
					Method:    r.Method,
					Path:      r.URL.Path,
					Query:     r.URL.RawQuery,
					UserAgent: r.UserAgent(),
				},
				IPAddress: httpx.ClientIP(r),
			})
		})
	}
}
