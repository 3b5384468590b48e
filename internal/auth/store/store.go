package store

import (
	"context"
	"errors"
	"time"

	"github.com/hrflowhq/hrflow/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and a transaction entry point for multi-step operations whose
// correctness depends on atomicity (refresh rotation, reset replacement,
// two-factor enablement, password change).
type Store interface {
	Users() Users
	RefreshTokens() RefreshTokens
	PasswordResetTokens() PasswordResetTokens
	TwoFactorChallenges() TwoFactorChallenges
	AuditLogs() AuditLogs
	Employees() Employees

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns nil
	// and rolling back otherwise. This is the recommended way to handle
	// transactions.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// GetUserByID returns a user by id.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail is used during login and forgot-password.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// ListUsers returns a page of users, newest first.
	ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error)

	// CountUsers returns the total number of accounts.
	CountUsers(ctx context.Context) (int64, error)

	// CreateUser inserts a new user (id is provided by the app via ULID).
	// Returns ErrAlreadyExists on a duplicate email.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, userID string, newHash string) error

	// UpdateLastLogin stamps last_login_at.
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error

	// SetTwoFactorSecret stores the TOTP secret without enabling two-factor.
	SetTwoFactorSecret(ctx context.Context, userID string, secret string) error

	// EnableTwoFactor flips two_factor_enabled once enrollment completes.
	EnableTwoFactor(ctx context.Context, userID string) error

	// SetActive toggles the account's active flag.
	SetActive(ctx context.Context, userID string, active bool) error

	// UpdateRole changes the account's role.
	UpdateRole(ctx context.Context, userID string, role domain.Role) error
}

type RefreshTokens interface {
	// CreateRefreshToken stores a new refresh token record.
	CreateRefreshToken(ctx context.Context, t domain.RefreshToken) error

	// GetRefreshTokenByHash returns the record for a token fingerprint.
	GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error)

	// DeleteRefreshToken removes the record for a token fingerprint.
	// Returns ErrNotFound when no row was removed, which is how a concurrent
	// rotation race is detected inside a transaction.
	DeleteRefreshToken(ctx context.Context, hash string) error

	// DeleteAllUserRefreshTokens removes every refresh token for a user
	// (reuse detection fallout, password change).
	DeleteAllUserRefreshTokens(ctx context.Context, userID string) error

	// DeleteExpiredRefreshTokens is housekeeping.
	DeleteExpiredRefreshTokens(ctx context.Context) error
}

type PasswordResetTokens interface {
	// CreatePasswordResetToken stores a reset token record. Callers replace
	// any prior token for the user in the same transaction.
	CreatePasswordResetToken(ctx context.Context, t domain.PasswordResetToken) error

	// GetPasswordResetTokenByHash returns the record for a token fingerprint.
	GetPasswordResetTokenByHash(ctx context.Context, hash string) (domain.PasswordResetToken, error)

	// DeleteUserPasswordResetTokens removes all reset tokens for a user.
	DeleteUserPasswordResetTokens(ctx context.Context, userID string) error

	// DeleteExpiredPasswordResetTokens is housekeeping.
	DeleteExpiredPasswordResetTokens(ctx context.Context) error
}

type TwoFactorChallenges interface {
	// CreateTwoFactorChallenge records a pending second-factor step.
	CreateTwoFactorChallenge(ctx context.Context, c domain.TwoFactorChallenge) error

	// ConsumeTwoFactorChallenge removes the pending (unexpired) challenge for
	// a user. Returns ErrNotFound when none exists.
	ConsumeTwoFactorChallenge(ctx context.Context, userID string) error

	// DeleteExpiredTwoFactorChallenges is housekeeping.
	DeleteExpiredTwoFactorChallenges(ctx context.Context) error
}

type AuditLogs interface {
	// CreateAuditLog appends an entry. Entries are never updated or deleted.
	CreateAuditLog(ctx context.Context, e domain.AuditLogEntry) error

	// CountAuditLogs returns the total number of entries (used by tests and
	// readiness diagnostics).
	CountAuditLogs(ctx context.Context) (int64, error)
}

type Employees interface {
	// GetEmployeeByID returns an employee record.
	GetEmployeeByID(ctx context.Context, id string) (domain.Employee, error)

	// CreateEmployee inserts a reporting-graph node.
	CreateEmployee(ctx context.Context, e domain.Employee) error
}
