package service

import (
	"context"
	"errors"

	"github.com/hrflowhq/hrflow/internal/auth/domain"
	"github.com/hrflowhq/hrflow/internal/auth/store"
)

// maxChainDepth caps upward traversal of the reporting graph. Real org charts
// are shallow; anything deeper indicates corrupt data.
const maxChainDepth = 10

// DirectoryService answers reporting-line questions from the employees table.
// It satisfies httpx.EmployeeHierarchy.
type DirectoryService struct {
	Store store.Store
}

// ErrEmployeeNotFound is returned when a reporting record lookup misses.
var ErrEmployeeNotFound = errors.New("employee_not_found")

// GetEmployee returns one reporting record.
func (s *DirectoryService) GetEmployee(ctx context.Context, employeeID string) (domain.Employee, error) {
	emp, err := s.Store.Employees().GetEmployeeByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Employee{}, ErrEmployeeNotFound
		}
		return domain.Employee{}, err
	}
	return emp, nil
}

// IsManagerOf reports whether managerEmployeeID appears anywhere in the
// management chain above employeeID. Missing records and cycles resolve to
// false: access control denies when the data cannot prove the relationship.
func (s *DirectoryService) IsManagerOf(ctx context.Context, managerEmployeeID, employeeID string) (bool, error) {
	if managerEmployeeID == "" || employeeID == "" {
		return false, nil
	}

	seen := map[string]struct{}{employeeID: {}}
	current := employeeID

	for range maxChainDepth {
		emp, err := s.Store.Employees().GetEmployeeByID(ctx, current)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return false, nil
			}
			return false, err
		}
		if emp.ManagerID == nil || *emp.ManagerID == "" {
			return false, nil
		}
		if *emp.ManagerID == managerEmployeeID {
			return true, nil
		}
		if _, ok := seen[*emp.ManagerID]; ok {
			return false, nil
		}
		seen[*emp.ManagerID] = struct{}{}
		current = *emp.ManagerID
	}

	return false, nil
}
