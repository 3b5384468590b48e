package http

import (
	"encoding/json"
	"net/http"

	"github.com/hrflowhq/hrflow/internal/auth/service"
	"github.com/hrflowhq/hrflow/pkg/httpx"
	"github.com/hrflowhq/hrflow/pkg/slogx"
)

// LogoutHandler handles POST /auth/logout.
type LogoutHandler struct {
	Sessions *service.SessionService
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req logoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		decodeError(w, log, err)
		return
	}
	if req.RefreshToken == "" {
		httpx.WriteError(w, http.StatusBadRequest, "refreshToken is required")
		return
	}

	if err := h.Sessions.Logout(ctx, req.RefreshToken); err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "logged out",
	})
}
