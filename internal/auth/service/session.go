package service

import (
	"context"
	"errors"
	"time"

	"github.com/hrflowhq/hrflow/internal/auth/domain"
	"github.com/hrflowhq/hrflow/internal/auth/store"
	"github.com/hrflowhq/hrflow/pkg/cryptox"
	"github.com/hrflowhq/hrflow/pkg/idx"
	"github.com/hrflowhq/hrflow/pkg/slogx"
)

// ErrNoPendingChallenge is returned when a two-factor verification arrives
// for a user with no unexpired login challenge on record.
var ErrNoPendingChallenge = errors.New("no_pending_challenge")

// DefaultChallengeTTL bounds how long a login may sit between password and
// second factor.
const DefaultChallengeTTL = 5 * time.Minute

// LoginResult is what a successful credential check yields. When the account
// has two-factor enabled, RequiresTwoFactor is true and both token fields are
// empty: no credential of any kind exists until the second factor passes.
type LoginResult struct {
	User              domain.PublicUser
	AccessToken       string
	RefreshToken      string
	RequiresTwoFactor bool
}

// TwoFactorVerifyResult reports a code verification. Tokens are present only
// when the verification completed a pending login challenge.
type TwoFactorVerifyResult struct {
	Verified     bool
	AccessToken  string
	RefreshToken string
}

// SessionService orchestrates the login lifecycle: password check, optional
// two-factor gate, token issuance, refresh and logout.
type SessionService struct {
	Store        store.Store
	Tokens       *TokenService
	TwoFactor    *TwoFactorService
	ChallengeTTL time.Duration
}

// Login authenticates an email/password pair. Unknown email, wrong password
// and inactive account all surface as ErrInvalidCredentials so responses and
// timing reveal nothing about which accounts exist; the precise reason is
// only logged.
func (s *SessionService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn a hash comparison anyway to keep unknown-email latency
			// close to the wrong-password path.
			_ = cryptox.VerifyPassword(password, cryptox.DummyHash)
			l.Info("login rejected: unknown email")
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if err := cryptox.VerifyPassword(password, u.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Info("login rejected: wrong password", "user_id", u.ID)
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if !u.Active {
		l.Warn("login rejected: inactive account", "user_id", u.ID)
		return LoginResult{}, ErrInvalidCredentials
	}

	if u.TwoFactorEnabled {
		ttl := s.ChallengeTTL
		if ttl <= 0 {
			ttl = DefaultChallengeTTL
		}
		now := time.Now().UTC()
		err := s.Store.TwoFactorChallenges().CreateTwoFactorChallenge(ctx, domain.TwoFactorChallenge{
			ID:        idx.New().String(),
			UserID:    u.ID,
			ExpiresAt: now.Add(ttl),
		})
		if err != nil {
			return LoginResult{}, err
		}
		l.Info("login pending second factor", "user_id", u.ID)
		return LoginResult{User: u.Public(), RequiresTwoFactor: true}, nil
	}

	pair, err := s.Tokens.IssueSession(ctx, u)
	if err != nil {
		return LoginResult{}, err
	}

	if err := s.Store.Users().UpdateLastLogin(ctx, u.ID, time.Now().UTC()); err != nil {
		l.Error("failed to stamp last login", "user_id", u.ID, "err", err)
	}

	l.Info("login succeeded", "user_id", u.ID, "role", u.Role)
	return LoginResult{
		User:         u.Public(),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// VerifyTwoFactor checks a TOTP code. When the user has a pending login
// challenge, a correct code consumes it and mints the session tokens the
// login withheld. During enrollment (two-factor not yet enabled) a correct
// code completes enrollment and returns verified without tokens.
func (s *SessionService) VerifyTwoFactor(ctx context.Context, userID, code string) (TwoFactorVerifyResult, error) {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return TwoFactorVerifyResult{}, ErrInvalidCredentials
		}
		return TwoFactorVerifyResult{}, err
	}

	ok, err := s.TwoFactor.Verify(ctx, userID, code)
	if err != nil {
		return TwoFactorVerifyResult{}, err
	}
	if !ok {
		l.Info("two-factor code rejected", "user_id", userID)
		return TwoFactorVerifyResult{Verified: false}, nil
	}

	// Enrollment path: there is no login challenge to redeem, the account
	// just turned two-factor on.
	err = s.Store.TwoFactorChallenges().ConsumeTwoFactorChallenge(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.Info("two-factor enrollment verified", "user_id", userID)
			return TwoFactorVerifyResult{Verified: true}, nil
		}
		return TwoFactorVerifyResult{}, err
	}

	if !u.Active {
		l.Warn("two-factor verify for inactive account", "user_id", userID)
		return TwoFactorVerifyResult{}, ErrInvalidCredentials
	}

	pair, err := s.Tokens.IssueSession(ctx, u)
	if err != nil {
		return TwoFactorVerifyResult{}, err
	}

	if err := s.Store.Users().UpdateLastLogin(ctx, u.ID, time.Now().UTC()); err != nil {
		l.Error("failed to stamp last login", "user_id", u.ID, "err", err)
	}

	l.Info("two-factor login completed", "user_id", userID)
	return TwoFactorVerifyResult{
		Verified:     true,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Refresh rotates a refresh token into a new pair.
func (s *SessionService) Refresh(ctx context.Context, rawRefresh string) (*domain.TokenPair, error) {
	return s.Tokens.Rotate(ctx, rawRefresh)
}

// Logout revokes the presented refresh token. Idempotent.
func (s *SessionService) Logout(ctx context.Context, rawRefresh string) error {
	return s.Tokens.Revoke(ctx, rawRefresh)
}
