package http

import (
	"net/http"
	"time"

	"github.com/hrflowhq/hrflow/internal/auth/service"
	"github.com/hrflowhq/hrflow/pkg/httpx"
	"github.com/hrflowhq/hrflow/pkg/slogx"
)

// EmployeesHandler serves the reporting-record lookups that back manager
// authorization.
type EmployeesHandler struct {
	Directory *service.DirectoryService
}

type employeeResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ManagerID *string   `json:"managerId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// HandleGet serves GET /employees/{employeeId}.
func (h *EmployeesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	emp, err := h.Directory.GetEmployee(ctx, r.PathValue("employeeId"))
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	SetAuditValues(ctx, func(v *AuditValues) { v.ResourceID = emp.ID })

	httpx.WriteJSON(w, http.StatusOK, employeeResponse{
		ID:        emp.ID,
		UserID:    emp.UserID,
		ManagerID: emp.ManagerID,
		CreatedAt: emp.CreatedAt,
	})
}
