package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/hrflowhq/hrflow/internal/auth/domain"
	"github.com/hrflowhq/hrflow/internal/auth/service"
	"github.com/hrflowhq/hrflow/internal/auth/store"
	"github.com/hrflowhq/hrflow/pkg/httpx"
	"github.com/hrflowhq/hrflow/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     httpx.TokenVerifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	SessionService   *service.SessionService
	TwoFactorService *service.TwoFactorService
	PasswordService  *service.PasswordService
	UserService      *service.UserService
	AuditRecorder    *service.AuditRecorder
	Directory        *service.DirectoryService
}

func NewRouter(
	verifier httpx.TokenVerifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSessions()
	r.registerTwoFactor()
	r.registerPasswords()
	r.registerUsers()
	r.registerEmployees()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerSessions() {
	// POST /auth/login - strict rate limit by IP (credential guessing)
	r.Mux.Handle("POST /auth/login",
		httpx.Chain(&LoginHandler{Sessions: r.SessionService},
			httpx.RateLimitByIP(httpx.StrictLimit),
			Audit(r.AuditRecorder, domain.AuditActionAccess, "session"),
		),
	)

	// POST /auth/refresh-token - strict rate limit by IP
	r.Mux.Handle("POST /auth/refresh-token",
		httpx.Chain(&RefreshHandler{Sessions: r.SessionService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/logout - moderate rate limit
	r.Mux.Handle("POST /auth/logout",
		httpx.Chain(&LogoutHandler{Sessions: r.SessionService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
			Audit(r.AuditRecorder, domain.AuditActionDelete, "session"),
		),
	)
}

func (r *Router) registerTwoFactor() {
	h := &TwoFactorHandler{
		Sessions:  r.SessionService,
		TwoFactor: r.TwoFactorService,
	}

	// POST /auth/2fa/setup - authenticated, moderate rate limit by user
	r.Mux.Handle("POST /auth/2fa/setup",
		httpx.Chain(http.HandlerFunc(h.HandleSetup),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
			Audit(r.AuditRecorder, domain.AuditActionCreate, "two_factor"),
		),
	)

	// POST /auth/2fa/verify - strict rate limit by IP (code guessing)
	r.Mux.Handle("POST /auth/2fa/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.RateLimitByIP(httpx.StrictLimit),
			Audit(r.AuditRecorder, domain.AuditActionAccess, "two_factor"),
		),
	)
}

func (r *Router) registerPasswords() {
	h := &PasswordHandler{Passwords: r.PasswordService}

	// POST /auth/forgot-password - strict rate limit by IP (enumeration, spam)
	r.Mux.Handle("POST /auth/forgot-password",
		httpx.Chain(http.HandlerFunc(h.HandleForgot),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /auth/reset-password - strict rate limit by IP (token guessing)
	r.Mux.Handle("POST /auth/reset-password",
		httpx.Chain(http.HandlerFunc(h.HandleReset),
			httpx.RateLimitByIP(httpx.StrictLimit),
			Audit(r.AuditRecorder, domain.AuditActionUpdate, "password"),
		),
	)

	// POST /auth/change-password - authenticated, moderate rate limit by user
	r.Mux.Handle("POST /auth/change-password",
		httpx.Chain(http.HandlerFunc(h.HandleChange),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
			Audit(r.AuditRecorder, domain.AuditActionUpdate, "password"),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{Users: r.UserService}

	// POST /auth/register - public, strict rate limit by IP (account spam)
	r.Mux.Handle("POST /auth/register",
		httpx.Chain(&RegisterHandler{Users: r.UserService},
			httpx.RateLimitByIP(httpx.StrictLimit),
			Audit(r.AuditRecorder, domain.AuditActionCreate, "user"),
		),
	)

	// GET /auth/users - ADMIN and HR only
	r.Mux.Handle("GET /auth/users",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRoles(string(domain.RoleAdmin), string(domain.RoleHR)),
			httpx.RateLimitByUser(httpx.ModerateLimit),
			Audit(r.AuditRecorder, domain.AuditActionAccess, "user"),
		),
	)

	// GET /auth/users/{userId} - own account, ADMIN and HR see everyone
	r.Mux.Handle("GET /auth/users/{userId}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireResourceOwner("userId", string(domain.RoleAdmin), string(domain.RoleHR)),
			httpx.RateLimitByUser(httpx.ModerateLimit),
			Audit(r.AuditRecorder, domain.AuditActionAccess, "user"),
		),
	)

	// PATCH /auth/users/{userId}/role - ADMIN only
	r.Mux.Handle("PATCH /auth/users/{userId}/role",
		httpx.Chain(http.HandlerFunc(h.HandleChangeRole),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRoles(string(domain.RoleAdmin)),
			httpx.RateLimitByUser(httpx.ModerateLimit),
			Audit(r.AuditRecorder, domain.AuditActionUpdate, "user_role"),
		),
	)

	// PATCH /auth/users/{userId}/status - ADMIN and HR
	r.Mux.Handle("PATCH /auth/users/{userId}/status",
		httpx.Chain(http.HandlerFunc(h.HandleChangeStatus),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireRoles(string(domain.RoleAdmin), string(domain.RoleHR)),
			httpx.RateLimitByUser(httpx.ModerateLimit),
			Audit(r.AuditRecorder, domain.AuditActionUpdate, "user_status"),
		),
	)
}

func (r *Router) registerEmployees() {
	h := &EmployeesHandler{Directory: r.Directory}

	// GET /employees/{employeeId} - own record, managers see their reporting
	// chain, ADMIN and HR see everyone
	r.Mux.Handle("GET /employees/{employeeId}",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireManager("employeeId", r.Directory, string(domain.RoleManager),
				string(domain.RoleAdmin), string(domain.RoleHR)),
			httpx.RateLimitByUser(httpx.ModerateLimit),
			Audit(r.AuditRecorder, domain.AuditActionAccess, "employee"),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems poll)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
