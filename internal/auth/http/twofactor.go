package http

import (
	"encoding/json"
	"net/http"

	"github.com/hrflowhq/hrflow/internal/auth/service"
	"github.com/hrflowhq/hrflow/pkg/httpx"
	"github.com/hrflowhq/hrflow/pkg/slogx"
)

// TwoFactorHandler handles the TOTP enrollment and verification endpoints.
type TwoFactorHandler struct {
	Sessions  *service.SessionService
	TwoFactor *service.TwoFactorService
}

type twoFactorVerifyRequest struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

type twoFactorVerifyResponse struct {
	Verified     bool   `json:"verified"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// HandleSetup handles POST /auth/2fa/setup (authenticated). Returns the
// enrollment material; two-factor stays disabled until the first verify.
func (h *TwoFactorHandler) HandleSetup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	rc, ok := httpx.FromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.MsgUnauthorized)
		return
	}

	setup, err := h.TwoFactor.Setup(ctx, rc.UserID)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	SetAuditValues(ctx, func(v *AuditValues) {
		v.ResourceID = rc.UserID
	})

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, setup)
}

// HandleVerify handles POST /auth/2fa/verify. Reached in two situations: a
// login that stopped at the second-factor gate, and the final step of
// enrollment. A wrong code is a 200 with verified:false.
func (h *TwoFactorHandler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req twoFactorVerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		decodeError(w, log, err)
		return
	}
	if req.UserID == "" || req.Token == "" {
		httpx.WriteError(w, http.StatusBadRequest, "userId and token are required")
		return
	}

	res, err := h.Sessions.VerifyTwoFactor(ctx, req.UserID, req.Token)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	if res.Verified {
		SetAuditValues(ctx, func(v *AuditValues) {
			v.UserID = req.UserID
			v.ResourceID = req.UserID
		})
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, twoFactorVerifyResponse{
		Verified:     res.Verified,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	})
}
