package cryptox

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost is the bcrypt cost factor used for new hashes. High enough to
// resist offline brute force on current hardware, tunable via HashPasswordCost.
const DefaultCost = 10

// Punctuation is the set of symbols that counts towards password strength.
const Punctuation = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// DummyHash is a valid bcrypt hash of a random throwaway value. Login flows
// compare against it when the account does not exist so the unknown-email
// path costs the same as a real mismatch.
const DummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

var (
	// ErrPasswordMismatch reports a well-formed hash that does not match the
	// presented password.
	ErrPasswordMismatch = errors.New("cryptox: password does not match")

	// ErrMalformedHash reports a stored hash that bcrypt cannot parse.
	ErrMalformedHash = errors.New("cryptox: malformed password hash")
)

// HashPassword hashes a plaintext password with bcrypt at DefaultCost.
func HashPassword(password string) (string, error) {
	return HashPasswordCost(password, DefaultCost)
}

// HashPasswordCost hashes with an explicit cost factor.
func HashPasswordCost(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("cryptox: failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password against a bcrypt hash.
// A mismatch returns ErrPasswordMismatch; an unparsable hash returns
// ErrMalformedHash. The comparison itself is constant-time inside bcrypt.
func VerifyPassword(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrPasswordMismatch
	default:
		return ErrMalformedHash
	}
}

// ValidateStrength reports whether a password satisfies the minimum policy:
// at least 8 characters with one uppercase letter, one lowercase letter, one
// digit and one symbol from Punctuation.
func ValidateStrength(password string) bool {
	if len(password) < 8 {
		return false
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(Punctuation, r):
			symbol = true
		}
	}

	return upper && lower && digit && symbol
}

const (
	passwordLength   = 12
	passwordCharset  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*()_+"
	passwordAttempts = 32
)

// GeneratePassword produces a random password that satisfies ValidateStrength.
// Generation retries a bounded number of times so a pathological RNG streak
// cannot spin forever.
func GeneratePassword() (string, error) {
	for range passwordAttempts {
		candidate, err := randomString(passwordLength, passwordCharset)
		if err != nil {
			return "", err
		}
		if ValidateStrength(candidate) {
			return candidate, nil
		}
	}
	return "", errors.New("cryptox: exhausted attempts generating a strong password")
}

func randomString(length int, charset string) (string, error) {
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("cryptox: failed to read randomness: %w", err)
		}
		out[i] = charset[n.Int64()]
	}
	return string(out), nil
}
