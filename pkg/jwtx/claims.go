package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTL constants. These provide sensible security defaults but
// can be overridden per-service.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	// Short-lived for security - typical range is 5m to 1h.
	DefaultAccessTokenTTL = 15 * time.Minute

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	// Longer-lived for user convenience - typical range is 7d to 30d.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour

	// DefaultResetTokenTTL is the default lifetime for password-reset tokens.
	DefaultResetTokenTTL = time.Hour
)

// Claims are the claims carried by every token domain. Access tokens use the
// identity fields; refresh and reset tokens only carry the subject plus the
// registered claims (the random jti is the refresh uniqueness nonce).
type Claims struct {
	jwt.RegisteredClaims

	// Email of the authenticated user (access tokens only).
	Email string `json:"email,omitempty"`

	// Role name, e.g. "ADMIN" or "EMPLOYEE" (access tokens only).
	Role string `json:"role,omitempty"`

	// EmployeeID links the account to its employee record, when one exists.
	EmployeeID string `json:"employee_id,omitempty"`
}

// NewClaims builds minimally-correct claims for a subject.
func NewClaims(subject, issuer string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim. A random
// nonce rather than a timestamp, so two tokens minted in the same instant can
// never collide.
func NewJTI() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateExpiry ensures the token hasn't expired (exp) and isn't used before
// it is valid (nbf).
func (c *Claims) ValidateExpiry() error {
	now := time.Now().UTC()

	if c.ExpiresAt != nil && now.After(c.ExpiresAt.Time) {
		return ErrExpired
	}

	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}

	return nil
}
