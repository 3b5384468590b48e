package httpx

import (
	"context"
	"net/http"
	"slices"

	"github.com/hrflowhq/hrflow/pkg/slogx"
)

// EmployeeHierarchy answers reporting-chain questions for manager checks.
type EmployeeHierarchy interface {
	// IsManagerOf reports whether managerEmployeeID sits above employeeID in
	// the reporting chain (directly or transitively).
	IsManagerOf(ctx context.Context, managerEmployeeID, employeeID string) (bool, error)
}

// RequireRoles permits only callers whose role is in allowed. Requests without
// a RequestContext get 401; authenticated callers outside the set get 403.
func RequireRoles(allowed ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc, ok := FromContext(r.Context())
			if !ok {
				WriteError(w, http.StatusUnauthorized, MsgUnauthorized)
				return
			}

			if !slices.Contains(allowed, rc.Role) {
				slogx.FromContext(r.Context()).Warn("role denied",
					"user_id", rc.UserID,
					"role", rc.Role,
				)
				WriteError(w, http.StatusForbidden, MsgForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireResourceOwner permits access only when the path parameter named
// idParam equals the caller's user id. Roles listed in bypassRoles skip the
// ownership check entirely.
func RequireResourceOwner(idParam string, bypassRoles ...string) Middleware {
	return requireOwner(idParam, bypassRoles, func(rc RequestContext) string { return rc.UserID })
}

// RequireEmployeeOwner is RequireResourceOwner keyed by the caller's employee
// id instead of the account id.
func RequireEmployeeOwner(idParam string, bypassRoles ...string) Middleware {
	return requireOwner(idParam, bypassRoles, func(rc RequestContext) string { return rc.EmployeeID })
}

func requireOwner(idParam string, bypassRoles []string, ownID func(RequestContext) string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc, ok := FromContext(r.Context())
			if !ok {
				WriteError(w, http.StatusUnauthorized, MsgUnauthorized)
				return
			}

			if slices.Contains(bypassRoles, rc.Role) {
				next.ServeHTTP(w, r)
				return
			}

			requested := r.PathValue(idParam)
			own := ownID(rc)
			if requested == "" || own == "" || requested != own {
				slogx.FromContext(r.Context()).Warn("resource access denied",
					"user_id", rc.UserID,
					"requested", requested,
				)
				WriteError(w, http.StatusForbidden, MsgForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireManager is the ownership check extended to managers: roles in
// managerRoles may additionally access employees in their reporting chain,
// resolved through the hierarchy lookup. A nil hierarchy never grants
// manager access.
func RequireManager(idParam string, hierarchy EmployeeHierarchy, managerRole string, bypassRoles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rc, ok := FromContext(r.Context())
			if !ok {
				WriteError(w, http.StatusUnauthorized, MsgUnauthorized)
				return
			}

			if slices.Contains(bypassRoles, rc.Role) {
				next.ServeHTTP(w, r)
				return
			}

			requested := r.PathValue(idParam)

			if rc.Role == managerRole && hierarchy != nil && rc.EmployeeID != "" && requested != "" {
				subordinate, err := hierarchy.IsManagerOf(r.Context(), rc.EmployeeID, requested)
				if err != nil {
					slogx.FromContext(r.Context()).Error("hierarchy lookup failed", "err", err)
					WriteError(w, http.StatusForbidden, MsgForbidden)
					return
				}
				if subordinate {
					next.ServeHTTP(w, r)
					return
				}
			}

			if requested == "" || rc.EmployeeID == "" || requested != rc.EmployeeID {
				WriteError(w, http.StatusForbidden, MsgForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
