package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	"github.com/hrflowhq/hrflow/internal/auth/domain"
	authhttp "github.com/hrflowhq/hrflow/internal/auth/http"
	"github.com/hrflowhq/hrflow/internal/auth/service"
	"github.com/hrflowhq/hrflow/internal/auth/store"
	"github.com/hrflowhq/hrflow/internal/auth/store/drivers/sqlite"
	"github.com/hrflowhq/hrflow/pkg/cryptox"
	"github.com/hrflowhq/hrflow/pkg/idx"
	"github.com/hrflowhq/hrflow/pkg/jwtx"
)

type testEnv struct {
	router *authhttp.Router
	store  store.Store
	audit  *service.AuditRecorder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(fmt.Sprintf("file:%s?mode=memory&cache=shared", idx.New()))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	logger := slog.New(slog.DiscardHandler)

	tokens := &service.TokenService{
		Store:   st,
		Access:  jwtx.NewSigner(jwtx.DomainAccess, []byte("access-secret"), "test", time.Minute),
		Refresh: jwtx.NewSigner(jwtx.DomainRefresh, []byte("refresh-secret"), "test", time.Hour),
		Reset:   jwtx.NewSigner(jwtx.DomainReset, []byte("reset-secret"), "test", time.Hour),
	}
	twoFactor := &service.TwoFactorService{Store: st, Issuer: "test"}
	sessions := &service.SessionService{Store: st, Tokens: tokens, TwoFactor: twoFactor}
	passwords := &service.PasswordService{
		Store:       st,
		Tokens:      tokens,
		Notifier:    &service.LogNotifier{Logger: logger},
		FrontendURL: "https://app.example.com",
	}
	audit := service.NewAuditRecorder(st, logger, 64)
	audit.Start()
	t.Cleanup(audit.Stop)

	router := authhttp.NewRouter(tokens, "test", st, logger)
	router.SessionService = sessions
	router.TwoFactorService = twoFactor
	router.PasswordService = passwords
	router.UserService = &service.UserService{Store: st, Tokens: tokens}
	router.AuditRecorder = audit
	router.Directory = &service.DirectoryService{Store: st}
	router.ApplyRoutes()

	return &testEnv{router: router, store: st, audit: audit}
}

func (e *testEnv) seedUser(t *testing.T, email, password string) domain.User {
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
	require.NoError(t, e.store.Users().CreateUser(context.Background(), u))
	return u
}

func (e *testEnv) post(t *testing.T, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestLoginEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "admin@x.com", "admin123")

	t.Run("valid credentials", func(t *testing.T) {
		rec := env.post(t, "/auth/login", "", map[string]string{
			"email": "admin@x.com", "password": "admin123",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

		body := decodeBody(t, rec)
		require.NotEmpty(t, body["accessToken"])
		require.NotEmpty(t, body["refreshToken"])
		require.Equal(t, false, body["requiresTwoFactor"])
	})

	t.Run("wrong password and unknown email share one response", func(t *testing.T) {
		wrong := env.post(t, "/auth/login", "", map[string]string{
			"email": "admin@x.com", "password": "nope",
		})
		unknown := env.post(t, "/auth/login", "", map[string]string{
			"email": "ghost@x.com", "password": "nope",
		})

		require.Equal(t, http.StatusUnauthorized, wrong.Code)
		require.Equal(t, http.StatusUnauthorized, unknown.Code)
		require.Equal(t, wrong.Body.String(), unknown.Body.String())
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := env.post(t, "/auth/login", "", map[string]string{"email": "admin@x.com"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRefreshTokenEndpointIsSingleUse(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "user@x.com", "Passw0rd!")

	login := env.post(t, "/auth/login", "", map[string]string{
		"email": "user@x.com", "password": "Passw0rd!",
	})
	require.Equal(t, http.StatusOK, login.Code)
	refresh := decodeBody(t, login)["refreshToken"].(string)

	first := env.post(t, "/auth/refresh-token", "", map[string]string{"refreshToken": refresh})
	require.Equal(t, http.StatusOK, first.Code)
	body := decodeBody(t, first)
	require.NotEmpty(t, body["accessToken"])
	require.NotEmpty(t, body["refreshToken"])
	// Access TTL is one minute in this environment, reported in seconds.
	require.EqualValues(t, 60, body["expiresIn"])

	second := env.post(t, "/auth/refresh-token", "", map[string]string{"refreshToken": refresh})
	require.Equal(t, http.StatusUnauthorized, second.Code)
}

func TestLogoutEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "user@x.com", "Passw0rd!")

	login := env.post(t, "/auth/login", "", map[string]string{
		"email": "user@x.com", "password": "Passw0rd!",
	})
	refresh := decodeBody(t, login)["refreshToken"].(string)

	rec := env.post(t, "/auth/logout", "", map[string]string{"refreshToken": refresh})
	require.Equal(t, http.StatusOK, rec.Code)

	after := env.post(t, "/auth/refresh-token", "", map[string]string{"refreshToken": refresh})
	require.Equal(t, http.StatusUnauthorized, after.Code)
}

func TestForgotPasswordNeverLeaksAccountExistence(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "user@x.com", "Passw0rd!")

	known := env.post(t, "/auth/forgot-password", "", map[string]string{"email": "user@x.com"})
	unknown := env.post(t, "/auth/forgot-password", "", map[string]string{"email": "ghost@x.com"})

	require.Equal(t, http.StatusOK, known.Code)
	require.Equal(t, http.StatusOK, unknown.Code)
	require.Equal(t, known.Body.String(), unknown.Body.String())
}

func TestResetPasswordEndpoint(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "user@x.com", "OldPass1!")

	token, err := env.router.PasswordService.Tokens.IssueReset(context.Background(), u.ID)
	require.NoError(t, err)

	t.Run("weak password rejected", func(t *testing.T) {
		rec := env.post(t, "/auth/reset-password", "", map[string]string{
			"token": token, "newPassword": "abc12345",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("reset succeeds and token burns", func(t *testing.T) {
		rec := env.post(t, "/auth/reset-password", "", map[string]string{
			"token": token, "newPassword": "NewPass1!",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		again := env.post(t, "/auth/reset-password", "", map[string]string{
			"token": token, "newPassword": "OtherPass1!",
		})
		require.Equal(t, http.StatusBadRequest, again.Code)

		login := env.post(t, "/auth/login", "", map[string]string{
			"email": "user@x.com", "password": "NewPass1!",
		})
		require.Equal(t, http.StatusOK, login.Code)
	})
}

func TestChangePasswordEndpointRequiresAuthentication(t *testing.T) {
	env := newTestEnv(t)

	rec := env.post(t, "/auth/change-password", "", map[string]string{
		"currentPassword": "OldPass1!", "newPassword": "NewPass1!",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestChangePasswordEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "user@x.com", "OldPass1!")

	login := env.post(t, "/auth/login", "", map[string]string{
		"email": "user@x.com", "password": "OldPass1!",
	})
	access := decodeBody(t, login)["accessToken"].(string)

	rec := env.post(t, "/auth/change-password", access, map[string]string{
		"currentPassword": "OldPass1!", "newPassword": "NewPass1!",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	relogin := env.post(t, "/auth/login", "", map[string]string{
		"email": "user@x.com", "password": "NewPass1!",
	})
	require.Equal(t, http.StatusOK, relogin.Code)
}

func TestTwoFactorEnrollmentFlow(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "user@x.com", "Passw0rd!")

	login := env.post(t, "/auth/login", "", map[string]string{
		"email": "user@x.com", "password": "Passw0rd!",
	})
	access := decodeBody(t, login)["accessToken"].(string)

	setup := env.post(t, "/auth/2fa/setup", access, nil)
	require.Equal(t, http.StatusOK, setup.Code)
	setupBody := decodeBody(t, setup)
	secret := setupBody["secret"].(string)
	require.NotEmpty(t, secret)
	require.Contains(t, setupBody["qrCodeUrl"].(string), "data:image/png;base64,")

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	verify := env.post(t, "/auth/2fa/verify", "", map[string]string{
		"userId": u.ID, "token": code,
	})
	require.Equal(t, http.StatusOK, verify.Code)
	require.Equal(t, true, decodeBody(t, verify)["verified"])

	// Enabled exactly once.
	stored, err := env.store.Users().GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.True(t, stored.TwoFactorEnabled)

	// Subsequent logins stop at the gate, and a fresh code opens it.
	gated := env.post(t, "/auth/login", "", map[string]string{
		"email": "user@x.com", "password": "Passw0rd!",
	})
	require.Equal(t, http.StatusOK, gated.Code)
	gatedBody := decodeBody(t, gated)
	require.Equal(t, true, gatedBody["requiresTwoFactor"])
	require.Nil(t, gatedBody["accessToken"])

	code, err = totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	unlock := env.post(t, "/auth/2fa/verify", "", map[string]string{
		"userId": u.ID, "token": code,
	})
	require.Equal(t, http.StatusOK, unlock.Code)
	unlockBody := decodeBody(t, unlock)
	require.Equal(t, true, unlockBody["verified"])
	require.NotEmpty(t, unlockBody["accessToken"])
	require.NotEmpty(t, unlockBody["refreshToken"])
}

func TestTwoFactorVerifyWrongCode(t *testing.T) {
	env := newTestEnv(t)
	u := env.seedUser(t, "user@x.com", "Passw0rd!")

	login := env.post(t, "/auth/login", "", map[string]string{
		"email": "user@x.com", "password": "Passw0rd!",
	})
	access := decodeBody(t, login)["accessToken"].(string)

	setup := env.post(t, "/auth/2fa/setup", access, nil)
	require.Equal(t, http.StatusOK, setup.Code)

	rec := env.post(t, "/auth/2fa/verify", "", map[string]string{
		"userId": u.ID, "token": "000000",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, false, body["verified"])
	require.Nil(t, body["accessToken"])
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	live := get("/livez")
	require.Equal(t, http.StatusOK, live.Code)
	require.Equal(t, "ok", decodeBody(t, live)["status"])

	ready := get("/readyz")
	require.Equal(t, http.StatusOK, ready.Code)
}

func TestStrictRateLimitOnLogin(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "user@x.com", "Passw0rd!")

	var last *httptest.ResponseRecorder
	for range 6 {
		last = env.post(t, "/auth/login", "", map[string]string{
			"email": "user@x.com", "password": "wrong",
		})
	}
	require.Equal(t, http.StatusTooManyRequests, last.Code)
	require.NotEmpty(t, last.Header().Get("Retry-After"))
}
