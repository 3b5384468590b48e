package service_test

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hrflowhq/hrflow/internal/auth/domain"
	"github.com/hrflowhq/hrflow/internal/auth/service"
	"github.com/hrflowhq/hrflow/internal/auth/store"
	"github.com/hrflowhq/hrflow/internal/auth/store/drivers/sqlite"
	"github.com/hrflowhq/hrflow/pkg/cryptox"
	"github.com/hrflowhq/hrflow/pkg/idx"
	"github.com/hrflowhq/hrflow/pkg/jwtx"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.NewStore(fmt.Sprintf("file:%s?mode=memory&cache=shared", idx.New()))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	return st
}

func newTokenService(st store.Store) *service.TokenService {
	return &service.TokenService{
		Store:   st,
		Access:  jwtx.NewSigner(jwtx.DomainAccess, []byte("access-secret"), "test", time.Minute),
		Refresh: jwtx.NewSigner(jwtx.DomainRefresh, []byte("refresh-secret"), "test", time.Hour),
		Reset:   jwtx.NewSigner(jwtx.DomainReset, []byte("reset-secret"), "test", time.Hour),
	}
}

func newSessionService(st store.Store) *service.SessionService {
	return &service.SessionService{
		Store:     st,
		Tokens:    newTokenService(st),
		TwoFactor: &service.TwoFactorService{Store: st, Issuer: "test"},
	}
}

type userOption func(*domain.User)

func withRole(role domain.Role) userOption {
	return func(u *domain.User) { u.Role = role }
}

func inactive() userOption {
	return func(u *domain.User) { u.Active = false }
}

func seedUser(t *testing.T, st store.Store, email, password string, opts ...userOption) domain.User {
	t.Helper()

	hash, err := cryptox.HashPassword(password)
	require.NoError(t, err)

	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		Name:         "Test User",
		PasswordHash: hash,
		Role:         domain.RoleEmployee,
		Active:       true,
	}
	for _, opt := range opts {
		opt(&u)
	}

	require.NoError(t, st.Users().CreateUser(context.Background(), u))
	return u
}

func countUserRefreshTokens(t *testing.T, st store.Store, raws ...string) int {
	t.Helper()

	n := 0
	for _, raw := range raws {
		_, err := st.RefreshTokens().GetRefreshTokenByHash(
			context.Background(), cryptox.FingerprintToken(raw))
		if err == nil {
			n++
		} else {
			require.ErrorIs(t, err, store.ErrNotFound)
		}
	}
	return n
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
