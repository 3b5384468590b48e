package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/hrflowhq/hrflow/internal/auth/domain"
	"github.com/hrflowhq/hrflow/internal/auth/store"
)

var (
	ErrTwoFactorEnabled       = errors.New("two_factor_already_enabled")
	ErrTwoFactorNotConfigured = errors.New("two_factor_not_configured")
)

const qrCodeSize = 200

// TwoFactorService manages TOTP enrollment and verification. Enrollment is a
// two-step handshake: Setup stores a secret but leaves two-factor disabled;
// the first successful Verify flips it on.
type TwoFactorService struct {
	Store  store.Store
	Issuer string
}

// Setup generates a fresh TOTP secret for the user and returns the enrollment
// material (secret, otpauth URI, inline QR code). Calling Setup again before
// verification replaces the pending secret; calling it after enrollment
// completed is rejected.
func (s *TwoFactorService) Setup(ctx context.Context, userID string) (domain.TwoFactorSetup, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return domain.TwoFactorSetup{}, err
	}
	if u.TwoFactorEnabled {
		return domain.TwoFactorSetup{}, ErrTwoFactorEnabled
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: u.Email,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.TwoFactorSetup{}, fmt.Errorf("generate totp key: %w", err)
	}

	if err := s.Store.Users().SetTwoFactorSecret(ctx, userID, key.Secret()); err != nil {
		return domain.TwoFactorSetup{}, err
	}

	qr, err := qrDataURL(key)
	if err != nil {
		return domain.TwoFactorSetup{}, err
	}

	return domain.TwoFactorSetup{
		Secret:     key.Secret(),
		OTPAuthURL: key.URL(),
		QRCodeURL:  qr,
	}, nil
}

// Verify checks a 6-digit code against the user's stored secret. A wrong code
// is (false, nil), not an error. The first success completes enrollment by
// enabling two-factor on the account.
func (s *TwoFactorService) Verify(ctx context.Context, userID, code string) (bool, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return false, err
	}
	if u.TwoFactorSecret == nil || *u.TwoFactorSecret == "" {
		return false, ErrTwoFactorNotConfigured
	}

	// Default validation window accepts the adjacent 30s steps, absorbing
	// clock drift between server and authenticator app.
	if !totp.Validate(code, *u.TwoFactorSecret) {
		return false, nil
	}

	if !u.TwoFactorEnabled {
		if err := s.Store.Users().EnableTwoFactor(ctx, userID); err != nil {
			return false, err
		}
	}

	return true, nil
}

func qrDataURL(key *otp.Key) (string, error) {
	img, err := key.Image(qrCodeSize, qrCodeSize)
	if err != nil {
		return "", fmt.Errorf("render qr code: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode qr code: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
