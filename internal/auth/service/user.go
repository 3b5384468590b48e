package service

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/hrflowhq/hrflow/internal/auth/domain"
	"github.com/hrflowhq/hrflow/internal/auth/store"
	"github.com/hrflowhq/hrflow/pkg/cryptox"
	"github.com/hrflowhq/hrflow/pkg/idx"
	"github.com/hrflowhq/hrflow/pkg/slogx"
)

var (
	ErrEmailTaken   = errors.New("email_taken")
	ErrInvalidEmail = errors.New("invalid_email")
	ErrInvalidRole  = errors.New("invalid_role")
	ErrUserNotFound = errors.New("user_not_found")
)

// UserPage is one page of an administrative account listing.
type UserPage struct {
	Users      []domain.PublicUser
	Page       int
	Limit      int
	Total      int64
	TotalPages int64
}

// UserService covers account registration and the administrative user
// management surface. Authorization lives in the HTTP middleware chains; the
// service assumes the caller is allowed to do what it asks.
type UserService struct {
	Store  store.Store
	Tokens *TokenService
}

// Register creates a new EMPLOYEE account and logs it in. Duplicate emails
// surface as ErrEmailTaken; the unique index is the authority, not a
// lookup-then-insert check.
func (s *UserService) Register(ctx context.Context, name, email, password string) (LoginResult, error) {
	l := slogx.FromContext(ctx)

	if _, err := mail.ParseAddress(email); err != nil {
		return LoginResult{}, ErrInvalidEmail
	}
	if !cryptox.ValidateStrength(password) {
		return LoginResult{}, ErrWeakPassword
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return LoginResult{}, err
	}

	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         domain.RoleEmployee,
		Active:       true,
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			l.Warn("registration rejected: email already in use")
			return LoginResult{}, ErrEmailTaken
		}
		return LoginResult{}, err
	}

	pair, err := s.Tokens.IssueSession(ctx, u)
	if err != nil {
		return LoginResult{}, err
	}

	if err := s.Store.Users().UpdateLastLogin(ctx, u.ID, time.Now().UTC()); err != nil {
		l.Error("failed to stamp last login", "user_id", u.ID, "err", err)
	}

	l.Info("user registered", "user_id", u.ID)
	return LoginResult{
		User:         u.Public(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// List returns one page of accounts, newest first.
func (s *UserService) List(ctx context.Context, page, limit int) (UserPage, error) {
	total, err := s.Store.Users().CountUsers(ctx)
	if err != nil {
		return UserPage{}, err
	}

	users, err := s.Store.Users().ListUsers(ctx, limit, (page-1)*limit)
	if err != nil {
		return UserPage{}, err
	}

	public := make([]domain.PublicUser, 0, len(users))
	for _, u := range users {
		public = append(public, u.Public())
	}

	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}

	return UserPage{
		Users:      public,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

// Get returns one account by id.
func (s *UserService) Get(ctx context.Context, userID string) (domain.PublicUser, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.PublicUser{}, ErrUserNotFound
		}
		return domain.PublicUser{}, err
	}
	return u.Public(), nil
}

// ChangeRole sets an account's role, returning the updated account and the
// role it had before.
func (s *UserService) ChangeRole(ctx context.Context, userID string, role domain.Role) (domain.PublicUser, domain.Role, error) {
	l := slogx.FromContext(ctx)

	if !role.Valid() {
		return domain.PublicUser{}, "", ErrInvalidRole
	}

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.PublicUser{}, "", ErrUserNotFound
		}
		return domain.PublicUser{}, "", err
	}

	if err := s.Store.Users().UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.PublicUser{}, "", ErrUserNotFound
		}
		return domain.PublicUser{}, "", err
	}

	l.Info("user role changed", "user_id", userID, "old_role", u.Role, "new_role", role)

	previous := u.Role
	u.Role = role
	return u.Public(), previous, nil
}

// ChangeStatus activates or deactivates an account, returning the updated
// account and the previous status. Deactivation does not revoke live
// sessions; refresh rotation rejects inactive accounts, so access lapses
// when the current access token expires.
func (s *UserService) ChangeStatus(ctx context.Context, userID string, active bool) (domain.PublicUser, bool, error) {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.PublicUser{}, false, ErrUserNotFound
		}
		return domain.PublicUser{}, false, err
	}

	if err := s.Store.Users().SetActive(ctx, userID, active); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.PublicUser{}, false, ErrUserNotFound
		}
		return domain.PublicUser{}, false, err
	}

	l.Info("user status changed", "user_id", userID, "old_status", u.Active, "new_status", active)

	previous := u.Active
	u.Active = active
	return u.Public(), previous, nil
}
