package domain

import "time"

// Role is the coarse access level attached to an account.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleHR       Role = "HR"
	RoleManager  Role = "MANAGER"
	RoleEmployee Role = "EMPLOYEE"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleHR, RoleManager, RoleEmployee:
		return true
	}
	return false
}

type User struct {
	ID           string
	Email        string // unique
	Name         string
	PasswordHash string // bcrypt encoded
	Role         Role
	EmployeeID   *string // linked employee record (nullable)

	Active           bool
	TwoFactorEnabled bool
	TwoFactorSecret  *string // base32 TOTP secret, present once enrollment begins

	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PublicUser is the representation safe to return to clients.
type PublicUser struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	Name             string     `json:"name"`
	Role             Role       `json:"role"`
	EmployeeID       *string    `json:"employeeId,omitempty"`
	Active           bool       `json:"active"`
	TwoFactorEnabled bool       `json:"twoFactorEnabled"`
	LastLoginAt      *time.Time `json:"lastLoginAt,omitempty"`
}

// Public strips credential material from a user record.
func (u User) Public() PublicUser {
	return PublicUser{
		ID:               u.ID,
		Email:            u.Email,
		Name:             u.Name,
		Role:             u.Role,
		EmployeeID:       u.EmployeeID,
		Active:           u.Active,
		TwoFactorEnabled: u.TwoFactorEnabled,
		LastLoginAt:      u.LastLoginAt,
	}
}
