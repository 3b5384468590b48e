package cryptox_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrflowhq/hrflow/pkg/cryptox"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := cryptox.HashPassword("admin123")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$2a$"))

	require.NoError(t, cryptox.VerifyPassword("admin123", hash))
	require.ErrorIs(t, cryptox.VerifyPassword("admin124", hash), cryptox.ErrPasswordMismatch)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	err := cryptox.VerifyPassword("whatever", "not-a-bcrypt-hash")
	require.ErrorIs(t, err, cryptox.ErrMalformedHash)
}

func TestVerifyPasswordDummyHash(t *testing.T) {
	// The dummy hash must be parsable and never match anything sensible.
	err := cryptox.VerifyPassword("admin123", cryptox.DummyHash)
	require.ErrorIs(t, err, cryptox.ErrPasswordMismatch)
}

func TestHashPasswordUsesSaltedHashes(t *testing.T) {
	h1, err := cryptox.HashPassword("Same-Pass1")
	require.NoError(t, err)
	h2, err := cryptox.HashPassword("Same-Pass1")
	require.NoError(t, err)
	require.NotEqual(t, h1, h2)
}

func TestValidateStrength(t *testing.T) {
	cases := []struct {
		password string
		want     bool
	}{
		{"abc12345", false}, // no uppercase, no symbol
		{"Abc123!@", true},
		{"Sh0rt!", false},       // too short
		{"alllowercase1!", false}, // no uppercase
		{"ALLUPPERCASE1!", false}, // no lowercase
		{"NoDigitsHere!", false},
		{"NoSymbols123", false},
		{"", false},
	}

	for _, tc := range cases {
		t.Run(tc.password, func(t *testing.T) {
			require.Equal(t, tc.want, cryptox.ValidateStrength(tc.password))
		})
	}
}

func TestGeneratePassword(t *testing.T) {
	for range 10 {
		p, err := cryptox.GeneratePassword()
		require.NoError(t, err)
		require.True(t, cryptox.ValidateStrength(p), "generated password %q fails the policy", p)
	}
}
