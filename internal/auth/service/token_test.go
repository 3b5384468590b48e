package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrflowhq/hrflow/internal/auth/domain"
	"github.com/hrflowhq/hrflow/internal/auth/service"
	"github.com/hrflowhq/hrflow/internal/auth/store"
	"github.com/hrflowhq/hrflow/pkg/cryptox"
)

func TestIssueSession(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	tokens := newTokenService(st)

	u := seedUser(t, st, "user@example.com", "Passw0rd!")

	pair, err := tokens.IssueSession(ctx, u)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := tokens.Verify(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims.Subject)
	require.Equal(t, u.Email, claims.Email)
	require.Equal(t, string(u.Role), claims.Role)

	// The refresh token fingerprint is on record.
	row, err := st.RefreshTokens().GetRefreshTokenByHash(
		ctx, cryptox.FingerprintToken(pair.RefreshToken))
	require.NoError(t, err)
	require.Equal(t, u.ID, row.UserID)
}

func TestRotateIsSingleUse(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	tokens := newTokenService(st)

	u := seedUser(t, st, "user@example.com", "Passw0rd!")
	pair, err := tokens.IssueSession(ctx, u)
	require.NoError(t, err)

	rotated, err := tokens.Rotate(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	// The successor is valid, the consumed token is gone.
	require.Equal(t, 1, countUserRefreshTokens(t, st, rotated.RefreshToken))
	require.Equal(t, 0, countUserRefreshTokens(t, st, pair.RefreshToken))

	// Presenting the consumed token again is reuse: the whole session set is
	// torn down, including the legitimate successor.
	_, err = tokens.Rotate(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, service.ErrRefreshReuse)
	require.Equal(t, 0, countUserRefreshTokens(t, st, rotated.RefreshToken))
}

func TestRotateSecondUseDoesNotMutateStorageBeforeTeardown(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	tokens := newTokenService(st)

	u := seedUser(t, st, "user@example.com", "Passw0rd!")
	pair, err := tokens.IssueSession(ctx, u)
	require.NoError(t, err)

	first, err := tokens.Rotate(ctx, pair.RefreshToken)
	require.NoError(t, err)

	_, err = tokens.Rotate(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, service.ErrRefreshReuse)

	// No new token was minted for the attacker.
	require.Equal(t, 0, countUserRefreshTokens(t, st, pair.RefreshToken, first.RefreshToken))
}

func TestRotateRejectsGarbageAndForeignTokens(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	tokens := newTokenService(st)

	_, err := tokens.Rotate(ctx, "garbage")
	require.ErrorIs(t, err, service.ErrInvalidRefresh)

	// A validly-shaped token signed with the wrong secret.
	other := newTokenService(st)
	other.Refresh = tokens.Access // access signer, wrong domain secret
	u := seedUser(t, st, "user@example.com", "Passw0rd!")
	pair, err := other.IssueSession(ctx, u)
	require.NoError(t, err)

	_, err = tokens.Rotate(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, service.ErrInvalidRefresh)
}

func TestRotateRejectsInactiveAccount(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	tokens := newTokenService(st)

	u := seedUser(t, st, "user@example.com", "Passw0rd!")
	pair, err := tokens.IssueSession(ctx, u)
	require.NoError(t, err)

	require.NoError(t, st.Users().SetActive(ctx, u.ID, false))

	_, err = tokens.Rotate(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, service.ErrInvalidRefresh)
}

func TestRevokeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	tokens := newTokenService(st)

	u := seedUser(t, st, "user@example.com", "Passw0rd!")
	pair, err := tokens.IssueSession(ctx, u)
	require.NoError(t, err)

	require.NoError(t, tokens.Revoke(ctx, pair.RefreshToken))
	require.NoError(t, tokens.Revoke(ctx, pair.RefreshToken))

	// A revoked token can no longer rotate.
	_, err = tokens.Rotate(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, service.ErrRefreshReuse)
}

func TestResetTokenLifecycle(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	tokens := newTokenService(st)

	u := seedUser(t, st, "user@example.com", "Passw0rd!")

	raw1, err := tokens.IssueReset(ctx, u.ID)
	require.NoError(t, err)

	userID, err := tokens.VerifyReset(ctx, raw1)
	require.NoError(t, err)
	require.Equal(t, u.ID, userID)

	// Issuing again invalidates the prior token: single active per user.
	raw2, err := tokens.IssueReset(ctx, u.ID)
	require.NoError(t, err)

	_, err = tokens.VerifyReset(ctx, raw1)
	require.ErrorIs(t, err, service.ErrInvalidReset)

	_, err = tokens.VerifyReset(ctx, raw2)
	require.NoError(t, err)

	// An access token is not a reset token.
	pair, err := tokens.IssueSession(ctx, u)
	require.NoError(t, err)
	_, err = tokens.VerifyReset(ctx, pair.AccessToken)
	require.ErrorIs(t, err, service.ErrInvalidReset)
}

func TestDeleteRefreshTokenReportsMissingRows(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	err := st.RefreshTokens().DeleteRefreshToken(ctx, "no-such-fingerprint")
	require.ErrorIs(t, err, store.ErrNotFound)
}

// rivalRotationStore hands out refresh token rows normally but deletes the
// row before the lookup returns, landing a rival rotation in the window
// between the fingerprint lookup and the replacement transaction.
type rivalRotationStore struct {
	store.Store
}

func (s *rivalRotationStore) RefreshTokens() store.RefreshTokens {
	return &rivalRotationRepo{RefreshTokens: s.Store.RefreshTokens()}
}

type rivalRotationRepo struct {
	store.RefreshTokens
}

func (r *rivalRotationRepo) GetRefreshTokenByHash(ctx context.Context, hash string) (domain.RefreshToken, error) {
	row, err := r.RefreshTokens.GetRefreshTokenByHash(ctx, hash)
	if err != nil {
		return row, err
	}
	if err := r.RefreshTokens.DeleteRefreshToken(ctx, hash); err != nil {
		return row, err
	}
	return row, nil
}

func TestRotateLosesToConcurrentRotation(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	tokens := newTokenService(st)

	u := seedUser(t, st, "user@example.com", "Passw0rd!")
	pair, err := tokens.IssueSession(ctx, u)
	require.NoError(t, err)

	// The lookup succeeds, then the row vanishes before the replacement
	// transaction opens. The in-transaction delete must report the race and
	// the whole rotation must fail as reuse.
	tokens.Store = &rivalRotationStore{Store: st}

	_, err = tokens.Rotate(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, service.ErrRefreshReuse)

	// The losing rotation minted nothing: its transaction rolled back, so a
	// fresh issuance is the only way this user gets a session again.
	require.Equal(t, 0, countUserRefreshTokens(t, st, pair.RefreshToken))
	replacement, err := tokens.IssueSession(ctx, u)
	require.NoError(t, err)
	require.Equal(t, 1, countUserRefreshTokens(t, st, replacement.RefreshToken))
}
