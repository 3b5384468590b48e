package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Domain names a token purpose. Each domain signs with its own secret so a
// token minted for one purpose can never be replayed as another.
type Domain string

const (
	DomainAccess  Domain = "access"
	DomainRefresh Domain = "refresh"
	DomainReset   Domain = "reset"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
)

// Signer signs and verifies HS256 tokens within a single domain.
// Verification is a pure signature + expiry check requiring no storage lookup.
type Signer struct {
	domain Domain
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewSigner constructs a Signer for one token domain.
func NewSigner(domain Domain, secret []byte, issuer string, ttl time.Duration) *Signer {
	return &Signer{
		domain: domain,
		secret: secret,
		issuer: issuer,
		ttl:    ttl,
	}
}

// Domain returns the token domain this signer serves.
func (s *Signer) Domain() Domain { return s.domain }

// TTL returns the lifetime applied to issued tokens.
func (s *Signer) TTL() time.Duration { return s.ttl }

// Sign builds a token for the given claims. Registered claims left empty are
// filled in from the signer configuration.
func (s *Signer) Sign(claims Claims) (string, error) {
	now := time.Now().UTC()

	if claims.Issuer == "" {
		claims.Issuer = s.issuer
	}
	if claims.IssuedAt == nil {
		claims.IssuedAt = jwt.NewNumericDate(now)
	}
	if claims.NotBefore == nil {
		claims.NotBefore = jwt.NewNumericDate(now)
	}
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}
	if claims.ID == "" {
		claims.ID = NewJTI()
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// Verify parses and validates a token, returning its claims. Failure kinds
// are distinct (ErrMalformed, ErrExpired, ErrInvalidSig) so callers can log
// precisely while the edge collapses them into one generic response.
func (s *Signer) Verify(raw string) (Claims, error) {
	var claims Claims

	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return Claims{}, mapParseError(err)
	}

	if s.issuer != "" && claims.Issuer != s.issuer {
		return Claims{}, ErrIssuer
	}

	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	default:
		return ErrMalformed
	}
}
