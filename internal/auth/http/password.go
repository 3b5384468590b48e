package http

import (
	"encoding/json"
	"net/http"

	"github.com/hrflowhq/hrflow/internal/auth/service"
	"github.com/hrflowhq/hrflow/pkg/httpx"
	"github.com/hrflowhq/hrflow/pkg/slogx"
)

// PasswordHandler handles the forgot/reset/change password endpoints.
type PasswordHandler struct {
	Passwords *service.PasswordService
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// HandleForgot handles POST /auth/forgot-password. The response is identical
// whether or not the email is registered.
func (h *PasswordHandler) HandleForgot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		decodeError(w, log, err)
		return
	}
	if req.Email == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.Passwords.Forgot(ctx, req.Email); err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "if the email is registered, a reset link has been sent",
	})
}

// HandleReset handles POST /auth/reset-password.
func (h *PasswordHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		decodeError(w, log, err)
		return
	}
	if req.Token == "" || req.NewPassword == "" {
		httpx.WriteError(w, http.StatusBadRequest, "token and newPassword are required")
		return
	}

	if err := h.Passwords.Reset(ctx, req.Token, req.NewPassword); err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "password reset successfully",
	})
}

// HandleChange handles POST /auth/change-password (authenticated).
func (h *PasswordHandler) HandleChange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	rc, ok := httpx.FromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.MsgUnauthorized)
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		decodeError(w, log, err)
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		httpx.WriteError(w, http.StatusBadRequest, "currentPassword and newPassword are required")
		return
	}

	if err := h.Passwords.Change(ctx, rc.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		writeServiceError(w, log, err)
		return
	}

	SetAuditValues(ctx, func(v *AuditValues) {
		v.ResourceID = rc.UserID
	})

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "password changed successfully",
	})
}
