package http

import (
	"encoding/json"
	"net/http"

	"github.com/hrflowhq/hrflow/internal/auth/domain"
	"github.com/hrflowhq/hrflow/internal/auth/service"
	"github.com/hrflowhq/hrflow/pkg/httpx"
	"github.com/hrflowhq/hrflow/pkg/slogx"
)

// RegisterHandler handles POST /auth/register. New accounts always start as
// EMPLOYEE; role elevation is an admin operation.
type RegisterHandler struct {
	Users *service.UserService
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	User         domain.PublicUser `json:"user"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
}

func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		decodeError(w, log, err)
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		httpx.WriteError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	res, err := h.Users.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	SetAuditValues(ctx, func(v *AuditValues) {
		v.UserID = res.User.ID
		v.ResourceID = res.User.ID
	})

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, registerResponse{
		User:         res.User,
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
	})
}
