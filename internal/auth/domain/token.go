package domain

import "time"

// TokenPair is what session issuance returns: the short-lived access token
// and the tracked refresh token.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"` // access token lifetime in seconds
}

// RefreshToken models the stored refresh token record. Only the SHA-256
// fingerprint of the signed token is persisted. At most one valid row
// represents an issuance lineage: rotation deletes the row and inserts its
// replacement in one transaction.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string // base64url SHA-256 fingerprint
	ExpiresAt time.Time
	CreatedAt time.Time
}

// PasswordResetToken models the stored reset token record. At most one active
// row per user; creating a new one replaces any prior token.
type PasswordResetToken struct {
	ID        string
	UserID    string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}
