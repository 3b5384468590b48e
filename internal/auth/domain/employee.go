package domain

import "time"

// Employee is the slice of the employee graph this subsystem needs: the
// reporting edge used by manager authorization. Full employee records live in
// the HR CRUD modules.
type Employee struct {
	ID        string
	UserID    string
	ManagerID *string // nil for the top of a reporting chain
	CreatedAt time.Time
}
