package sqlite

import (
	"context"
	"database/sql"

	"github.com/hrflowhq/hrflow/internal/auth/domain"
)

type employeesRepo struct {
	db dbtx
}

func (r *employeesRepo) GetEmployeeByID(ctx context.Context, id string) (domain.Employee, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, manager_id, created_at
		FROM employees WHERE id = ?`, id)

	var (
		e         domain.Employee
		managerID sql.NullString
	)
	if err := row.Scan(&e.ID, &e.UserID, &managerID, &e.CreatedAt); err != nil {
		return domain.Employee{}, mapNotFound(err)
	}
	e.ManagerID = mapNullStringPtr(managerID)
	return e, nil
}

func (r *employeesRepo) CreateEmployee(ctx context.Context, e domain.Employee) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO employees (id, user_id, manager_id)
		VALUES (?, ?, ?)`,
		e.ID, e.UserID, mapOptionalString(e.ManagerID),
	)
	return err
}
