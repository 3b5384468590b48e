package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	"github.com/hrflowhq/hrflow/internal/auth/domain"
	"github.com/hrflowhq/hrflow/internal/auth/service"
)

func TestLoginSucceedsWithMatchingPassword(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sessions := newSessionService(st)

	u := seedUser(t, st, "admin@x.com", "admin123", withRole(domain.RoleAdmin))

	res, err := sessions.Login(ctx, "admin@x.com", "admin123")
	require.NoError(t, err)
	require.False(t, res.RequiresTwoFactor)
	require.NotEmpty(t, res.AccessToken)
	require.NotEmpty(t, res.RefreshToken)
	require.Equal(t, u.ID, res.User.ID)

	// Decoded role matches the stored role.
	claims, err := sessions.Tokens.Verify(res.AccessToken)
	require.NoError(t, err)
	require.Equal(t, string(domain.RoleAdmin), claims.Role)

	// Login stamps last_login_at.
	stored, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLoginAt)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sessions := newSessionService(st)

	seedUser(t, st, "user@example.com", "Passw0rd!")
	seedUser(t, st, "inactive@example.com", "Passw0rd!", inactive())

	_, wrongPassword := sessions.Login(ctx, "user@example.com", "wrong")
	_, unknownEmail := sessions.Login(ctx, "nobody@example.com", "anything")
	_, inactiveErr := sessions.Login(ctx, "inactive@example.com", "Passw0rd!")

	// Same error kind for all three: no oracle for which accounts exist.
	require.ErrorIs(t, wrongPassword, service.ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, service.ErrInvalidCredentials)
	require.ErrorIs(t, inactiveErr, service.ErrInvalidCredentials)
}

func TestLoginWithTwoFactorWithholdsTokens(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sessions := newSessionService(st)

	u := seedUser(t, st, "user@example.com", "Passw0rd!")

	// Enroll: setup then verify with a valid code.
	setup, err := sessions.TwoFactor.Setup(ctx, u.ID)
	require.NoError(t, err)
	code, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)
	enrolled, err := sessions.VerifyTwoFactor(ctx, u.ID, code)
	require.NoError(t, err)
	require.True(t, enrolled.Verified)
	require.Empty(t, enrolled.AccessToken) // enrollment grants nothing

	// Login now stops at the second-factor gate with no credentials issued.
	res, err := sessions.Login(ctx, "user@example.com", "Passw0rd!")
	require.NoError(t, err)
	require.True(t, res.RequiresTwoFactor)
	require.Empty(t, res.AccessToken)
	require.Empty(t, res.RefreshToken)

	// A correct code consumes the challenge and mints the session.
	code, err = totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)
	verified, err := sessions.VerifyTwoFactor(ctx, u.ID, code)
	require.NoError(t, err)
	require.True(t, verified.Verified)
	require.NotEmpty(t, verified.AccessToken)
	require.NotEmpty(t, verified.RefreshToken)
}

func TestVerifyTwoFactorRejectsWrongCode(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sessions := newSessionService(st)

	u := seedUser(t, st, "user@example.com", "Passw0rd!")
	_, err := sessions.TwoFactor.Setup(ctx, u.ID)
	require.NoError(t, err)

	res, err := sessions.VerifyTwoFactor(ctx, u.ID, "000000")
	require.NoError(t, err)
	require.False(t, res.Verified)
	require.Empty(t, res.AccessToken)

	// A wrong code does not complete enrollment.
	stored, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, stored.TwoFactorEnabled)
}

func TestVerifyTwoFactorUnknownUser(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sessions := newSessionService(st)

	_, err := sessions.VerifyTwoFactor(ctx, "no-such-user", "123456")
	require.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestLogoutEndsTheSession(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	sessions := newSessionService(st)

	seedUser(t, st, "user@example.com", "Passw0rd!")
	res, err := sessions.Login(ctx, "user@example.com", "Passw0rd!")
	require.NoError(t, err)

	require.NoError(t, sessions.Logout(ctx, res.RefreshToken))

	_, err = sessions.Refresh(ctx, res.RefreshToken)
	require.Error(t, err)
}
