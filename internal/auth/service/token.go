package service

import (
	"context"
	"errors"
	"time"

	"github.com/hrflowhq/hrflow/internal/auth/domain"
	"github.com/hrflowhq/hrflow/internal/auth/store"
	"github.com/hrflowhq/hrflow/pkg/cryptox"
	"github.com/hrflowhq/hrflow/pkg/idx"
	"github.com/hrflowhq/hrflow/pkg/jwtx"
	"github.com/hrflowhq/hrflow/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
	ErrRefreshReuse       = errors.New("refresh_token_reuse")
	ErrInvalidReset       = errors.New("invalid_reset_token")
)

// TokenService issues, verifies and rotates the three credential domains.
// Each domain signs with its own secret, so an access token can never pass as
// a reset token and vice versa.
type TokenService struct {
	Store   store.Store
	Access  *jwtx.Signer
	Refresh *jwtx.Signer
	Reset   *jwtx.Signer
}

// Verify validates an access token. Pure signature + expiry check, no
// storage lookup. Satisfies httpx.TokenVerifier.
func (s *TokenService) Verify(raw string) (jwtx.Claims, error) {
	return s.Access.Verify(raw)
}

// IssueSession mints an access/refresh pair for a fully authenticated user
// and persists the refresh token fingerprint.
func (s *TokenService) IssueSession(ctx context.Context, u domain.User) (*domain.TokenPair, error) {
	now := time.Now().UTC()

	access, err := s.signAccess(u, now)
	if err != nil {
		return nil, err
	}

	refresh, row, err := s.mintRefresh(u.ID, now)
	if err != nil {
		return nil, err
	}

	if err := s.Store.RefreshTokens().CreateRefreshToken(ctx, row); err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.Access.TTL().Seconds()),
	}, nil
}

// Rotate implements the refresh rotation protocol: the presented token is
// verified, looked up by fingerprint, then atomically replaced. A fingerprint
// miss on a validly-signed token means the token was already consumed,
// so every session for that user is torn down before the request is
// rejected.
func (s *TokenService) Rotate(ctx context.Context, rawRefresh string) (*domain.TokenPair, error) {
	now := time.Now().UTC()
	l := slogx.FromContext(ctx)

	claims, err := s.Refresh.Verify(rawRefresh)
	if err != nil {
		l.Warn("refresh token rejected", "err", err)
		return nil, ErrInvalidRefresh
	}

	fp := cryptox.FingerprintToken(rawRefresh)
	row, err := s.Store.RefreshTokens().GetRefreshTokenByHash(ctx, fp)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Reuse detected: the signature is ours but the row is gone.
			l.Warn("refresh token reuse detected, revoking all sessions",
				"user_id", claims.Subject)
			if err := s.Store.RefreshTokens().DeleteAllUserRefreshTokens(ctx, claims.Subject); err != nil {
				l.Error("failed to revoke user sessions after reuse", "err", err)
			}
			return nil, ErrRefreshReuse
		}
		return nil, err
	}

	if now.After(row.ExpiresAt) {
		return nil, ErrInvalidRefresh
	}

	u, err := s.Store.Users().GetUserByID(ctx, row.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}
	if !u.Active {
		l.Warn("refresh for inactive account", "user_id", u.ID)
		return nil, ErrInvalidRefresh
	}

	access, err := s.signAccess(u, now)
	if err != nil {
		return nil, err
	}

	newRefresh, newRow, err := s.mintRefresh(u.ID, now)
	if err != nil {
		return nil, err
	}

	// Delete old and insert new in one transaction. The delete reports
	// ErrNotFound if a concurrent rotation consumed the row first, so only
	// one of two racing refresh calls can produce a valid successor.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.RefreshTokens().DeleteRefreshToken(ctx, fp); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrRefreshReuse
			}
			return err
		}
		return tx.RefreshTokens().CreateRefreshToken(ctx, newRow)
	})
	if err != nil {
		return nil, err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: newRefresh,
		ExpiresIn:    int64(s.Access.TTL().Seconds()),
	}, nil
}

// Revoke removes a refresh token, ending its lineage. Revoking a token that
// is already gone is not an error; logout must be idempotent.
func (s *TokenService) Revoke(ctx context.Context, rawRefresh string) error {
	fp := cryptox.FingerprintToken(rawRefresh)
	err := s.Store.RefreshTokens().DeleteRefreshToken(ctx, fp)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

// IssueReset mints a password-reset token and persists its fingerprint,
// replacing any prior active token for the user.
func (s *TokenService) IssueReset(ctx context.Context, userID string) (string, error) {
	now := time.Now().UTC()

	raw, err := s.Reset.Sign(jwtx.NewClaims(userID, "", s.Reset.TTL(), now))
	if err != nil {
		return "", err
	}

	row := domain.PasswordResetToken{
		ID:        idx.New().String(),
		UserID:    userID,
		TokenHash: cryptox.FingerprintToken(raw),
		ExpiresAt: now.Add(s.Reset.TTL()),
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.PasswordResetTokens().DeleteUserPasswordResetTokens(ctx, userID); err != nil {
			return err
		}
		return tx.PasswordResetTokens().CreatePasswordResetToken(ctx, row)
	})
	if err != nil {
		return "", err
	}

	return raw, nil
}

// VerifyReset validates a reset token against both its signature and the
// stored single-active record, returning the owning user id.
func (s *TokenService) VerifyReset(ctx context.Context, raw string) (string, error) {
	claims, err := s.Reset.Verify(raw)
	if err != nil {
		return "", ErrInvalidReset
	}

	row, err := s.Store.PasswordResetTokens().GetPasswordResetTokenByHash(
		ctx, cryptox.FingerprintToken(raw))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrInvalidReset
		}
		return "", err
	}

	if time.Now().UTC().After(row.ExpiresAt) || row.UserID != claims.Subject {
		return "", ErrInvalidReset
	}

	return row.UserID, nil
}

func (s *TokenService) signAccess(u domain.User, now time.Time) (string, error) {
	claims := jwtx.NewClaims(u.ID, "", s.Access.TTL(), now)
	claims.Email = u.Email
	claims.Role = string(u.Role)
	if u.EmployeeID != nil {
		claims.EmployeeID = *u.EmployeeID
	}
	return s.Access.Sign(claims)
}

func (s *TokenService) mintRefresh(userID string, now time.Time) (string, domain.RefreshToken, error) {
	// The random jti inside the claims is the uniqueness nonce; the stored
	// row keys on the fingerprint of the full signed token.
	raw, err := s.Refresh.Sign(jwtx.NewClaims(userID, "", s.Refresh.TTL(), now))
	if err != nil {
		return "", domain.RefreshToken{}, err
	}

	row := domain.RefreshToken{
		ID:        idx.New().String(),
		UserID:    userID,
		TokenHash: cryptox.FingerprintToken(raw),
		ExpiresAt: now.Add(s.Refresh.TTL()),
	}
	return raw, row, nil
}
