package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/hrflowhq/hrflow/internal/auth/domain"
	"github.com/hrflowhq/hrflow/internal/auth/service"
	"github.com/hrflowhq/hrflow/pkg/httpx"
	"github.com/hrflowhq/hrflow/pkg/slogx"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// UsersHandler serves the administrative account management endpoints under
// /auth/users.
type UsersHandler struct {
	Users *service.UserService
}

type listUsersMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

type listUsersResponse struct {
	Users []domain.PublicUser `json:"users"`
	Meta  listUsersMeta       `json:"meta"`
}

// HandleList serves GET /auth/users with page/limit query parameters.
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	page, ok := queryInt(r, "page", 1)
	if !ok || page < 1 {
		httpx.WriteError(w, http.StatusBadRequest, "page must be a positive integer")
		return
	}
	limit, ok := queryInt(r, "limit", defaultPageLimit)
	if !ok || limit < 1 || limit > maxPageLimit {
		httpx.WriteError(w, http.StatusBadRequest,
			fmt.Sprintf("limit must be between 1 and %d", maxPageLimit))
		return
	}

	res, err := h.Users.List(ctx, page, limit)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, listUsersResponse{
		Users: res.Users,
		Meta: listUsersMeta{
			Page:       res.Page,
			Limit:      res.Limit,
			Total:      res.Total,
			TotalPages: res.TotalPages,
		},
	})
}

// HandleGet serves GET /auth/users/{userId}.
func (h *UsersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	userID := r.PathValue("userId")
	u, err := h.Users.Get(ctx, userID)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	SetAuditValues(ctx, func(v *AuditValues) { v.ResourceID = userID })

	httpx.WriteJSON(w, http.StatusOK, u)
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

// HandleChangeRole serves PATCH /auth/users/{userId}/role.
func (h *UsersHandler) HandleChangeRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	userID := r.PathValue("userId")

	var req changeRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		decodeError(w, log, err)
		return
	}
	if req.Role == "" {
		httpx.WriteError(w, http.StatusBadRequest, "role is required")
		return
	}

	u, previous, err := h.Users.ChangeRole(ctx, userID, domain.Role(req.Role))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	SetAuditValues(ctx, func(v *AuditValues) {
		v.ResourceID = userID
		v.OldValues = fmt.Sprintf(`{"role":%q}`, previous)
		v.NewValues = fmt.Sprintf(`{"role":%q}`, u.Role)
	})

	httpx.WriteJSON(w, http.StatusOK, u)
}

type changeStatusRequest struct {
	Status *bool `json:"status"`
}

// HandleChangeStatus serves PATCH /auth/users/{userId}/status.
func (h *UsersHandler) HandleChangeStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	userID := r.PathValue("userId")

	var req changeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		decodeError(w, log, err)
		return
	}
	if req.Status == nil {
		httpx.WriteError(w, http.StatusBadRequest, "status is required")
		return
	}

	u, previous, err := h.Users.ChangeStatus(ctx, userID, *req.Status)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	SetAuditValues(ctx, func(v *AuditValues) {
		v.ResourceID = userID
		v.OldValues = fmt.Sprintf(`{"active":%t}`, previous)
		v.NewValues = fmt.Sprintf(`{"active":%t}`, u.Active)
	})

	httpx.WriteJSON(w, http.StatusOK, u)
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
