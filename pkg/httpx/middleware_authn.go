package httpx

import (
	"net/http"
	"strings"

	"github.com/hrflowhq/hrflow/pkg/jwtx"
	"github.com/hrflowhq/hrflow/pkg/slogx"
)

// TokenVerifier validates an access token and returns its claims.
type TokenVerifier interface {
	Verify(raw string) (jwtx.Claims, error)
}

// AuthnMiddleware extracts the bearer token, verifies it against the access
// domain and populates the RequestContext. Missing, malformed, expired and
// badly-signed tokens all produce the same generic 401; the precise error
// kind is logged, never exposed.
func AuthnMiddleware(v TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				WriteError(w, http.StatusUnauthorized, MsgUnauthorized)
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				log.Warn("access token rejected", "err", err)
				WriteError(w, http.StatusUnauthorized, MsgUnauthorized)
				return
			}

			rc := RequestContext{
				UserID:     claims.Subject,
				EmployeeID: claims.EmployeeID,
				Role:       claims.Role,
				IPAddress:  ClientIP(r),
				UserAgent:  r.UserAgent(),
			}

			next.ServeHTTP(w, r.WithContext(ContextWith(ctx, rc)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
