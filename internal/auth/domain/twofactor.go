package domain

import "time"

// TwoFactorSetup is returned when TOTP enrollment begins. The secret is
// stored on the user record but two-factor stays disabled until the first
// successful verification.
type TwoFactorSetup struct {
	Secret     string `json:"secret"`     // base32 encoded
	OTPAuthURL string `json:"otpAuthUrl"` // otpauth:// enrollment URI
	QRCodeURL  string `json:"qrCodeUrl"`  // base64 PNG data URL of the QR code
}

// TwoFactorChallenge is a pending second-factor step recorded at login for
// accounts with two-factor enabled. No credentials are issued until the
// challenge is consumed by a successful code verification.
type TwoFactorChallenge struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
