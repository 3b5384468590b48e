package service

import (
	"context"
	"errors"

	"github.com/hrflowhq/hrflow/internal/auth/store"
	"github.com/hrflowhq/hrflow/pkg/cryptox"
	"github.com/hrflowhq/hrflow/pkg/slogx"
)

// ErrWeakPassword is returned when a new password fails the strength policy.
var ErrWeakPassword = errors.New("weak_password")

// PasswordService handles forgot/reset/change flows. Forgot never reveals
// whether an email is registered; both reset and change revoke every active
// session so a stolen refresh token does not survive a password change.
type PasswordService struct {
	Store       store.Store
	Tokens      *TokenService
	Notifier    Notifier
	FrontendURL string
}

// Forgot starts a password reset. It always succeeds from the caller's point
// of view: unknown or inactive accounts are logged and silently skipped so
// the endpoint cannot be used to enumerate registered emails.
func (s *PasswordService) Forgot(ctx context.Context, email string) error {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("password reset requested for unknown email")
			return nil
		}
		return err
	}
	if !u.Active {
		l.Info("password reset requested for inactive account", "user_id", u.ID)
		return nil
	}

	token, err := s.Tokens.IssueReset(ctx, u.ID)
	if err != nil {
		return err
	}

	link := s.FrontendURL + "/reset-password?token=" + token
	if err := s.Notifier.SendPasswordReset(ctx, u.Email, u.Name, link); err != nil {
		// Delivery failure must not change the response shape; a 500 here
		// would leak that the account exists.
		l.Error("failed to deliver password reset notification",
			"user_id", u.ID, "err", err)
	}

	l.Info("password reset issued", "user_id", u.ID)
	return nil
}

// Reset consumes a reset token and installs a new password. The token, the
// stored single-active record and the strength policy must all pass; the
// password swap, token burn and session revocation commit atomically.
func (s *PasswordService) Reset(ctx context.Context, token, newPassword string) error {
	l := slogx.FromContext(ctx)

	if !cryptox.ValidateStrength(newPassword) {
		return ErrWeakPassword
	}

	userID, err := s.Tokens.VerifyReset(ctx, token)
	if err != nil {
		return err
	}

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrInvalidReset
		}
		return err
	}
	if !u.Active {
		l.Warn("password reset for inactive account", "user_id", u.ID)
		return ErrInvalidReset
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, u.ID, hash); err != nil {
			return err
		}
		if err := tx.PasswordResetTokens().DeleteUserPasswordResetTokens(ctx, u.ID); err != nil {
			return err
		}
		return tx.RefreshTokens().DeleteAllUserRefreshTokens(ctx, u.ID)
	})
	if err != nil {
		return err
	}

	l.Info("password reset completed", "user_id", u.ID)
	return nil
}

// Change updates an authenticated user's password after re-checking the
// current one. All refresh tokens are revoked; the caller keeps their access
// token until it expires and must log in again after that.
func (s *PasswordService) Change(ctx context.Context, userID, current, newPassword string) error {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := cryptox.VerifyPassword(current, u.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Info("password change rejected: wrong current password", "user_id", u.ID)
			return ErrInvalidCredentials
		}
		return err
	}

	if !cryptox.ValidateStrength(newPassword) {
		return ErrWeakPassword
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, u.ID, hash); err != nil {
			return err
		}
		return tx.RefreshTokens().DeleteAllUserRefreshTokens(ctx, u.ID)
	})
	if err != nil {
		return err
	}

	l.Info("password changed", "user_id", u.ID)
	return nil
}
