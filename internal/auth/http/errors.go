package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hrflowhq/hrflow/internal/auth/service"
	"github.com/hrflowhq/hrflow/pkg/httpx"
)

// writeServiceError maps service-layer failures onto HTTP responses. The
// mapping deliberately collapses every authentication failure kind into one
// generic 401 body; the precise cause is only logged server-side.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidRefresh),
		errors.Is(err, service.ErrRefreshReuse),
		errors.Is(err, service.ErrNoPendingChallenge):
		httpx.WriteError(w, http.StatusUnauthorized, httpx.MsgUnauthorized)

	case errors.Is(err, service.ErrEmailTaken):
		httpx.WriteError(w, http.StatusConflict, "email already in use")

	case errors.Is(err, service.ErrUserNotFound):
		httpx.WriteError(w, http.StatusNotFound, "user not found")

	case errors.Is(err, service.ErrEmployeeNotFound):
		httpx.WriteError(w, http.StatusNotFound, "employee not found")

	case errors.Is(err, service.ErrInvalidEmail):
		httpx.WriteError(w, http.StatusBadRequest, "invalid email address")

	case errors.Is(err, service.ErrInvalidRole):
		httpx.WriteError(w, http.StatusBadRequest, "role must be one of ADMIN, HR, MANAGER, EMPLOYEE")

	case errors.Is(err, service.ErrWeakPassword):
		httpx.WriteError(w, http.StatusBadRequest,
			"password must be at least 8 characters with uppercase, lowercase, number and symbol")

	case errors.Is(err, service.ErrInvalidReset):
		httpx.WriteError(w, http.StatusBadRequest, "invalid or expired reset token")

	case errors.Is(err, service.ErrTwoFactorEnabled):
		httpx.WriteError(w, http.StatusBadRequest, "two-factor authentication is already enabled")

	case errors.Is(err, service.ErrTwoFactorNotConfigured):
		httpx.WriteError(w, http.StatusBadRequest, "two-factor authentication is not configured")

	default:
		log.Error("request failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeError rejects an unparsable JSON body.
func decodeError(w http.ResponseWriter, log *slog.Logger, err error) {
	log.Warn("failed to parse request body", "err", err)
	httpx.WriteError(w, http.StatusBadRequest, "invalid JSON body")
}
