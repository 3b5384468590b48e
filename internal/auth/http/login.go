package http

import (
	"encoding/json"
	"net/http"

	"github.com/hrflowhq/hrflow/internal/auth/domain"
	"github.com/hrflowhq/hrflow/internal/auth/service"
	"github.com/hrflowhq/hrflow/pkg/httpx"
	"github.com/hrflowhq/hrflow/pkg/slogx"
)

// LoginHandler handles POST /auth/login.
type LoginHandler struct {
	Sessions *service.SessionService
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User              domain.PublicUser `json:"user"`
	AccessToken       string            `json:"accessToken,omitempty"`
	RefreshToken      string            `json:"refreshToken,omitempty"`
	RequiresTwoFactor bool              `json:"requiresTwoFactor"`
}

func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		decodeError(w, log, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	res, err := h.Sessions.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	SetAuditValues(ctx, func(v *AuditValues) {
		v.UserID = res.User.ID
		v.ResourceID = res.User.ID
	})

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, loginResponse{
		User:              res.User,
		AccessToken:       res.AccessToken,
		RefreshToken:      res.RefreshToken,
		RequiresTwoFactor: res.RequiresTwoFactor,
	})
}
