package twofa

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"log/slog"
	"net/url"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// DefaultIssuer is the name shown in authenticator apps.
	DefaultIssuer = "bbotir.xyz"

	DIGITS      = 6
	PERIOD      = 30
	SKEW        = 1
	SECRET_SIZE = 20
)

// GenerateTotpSecret generates a new base32-encoded TOTP secret for an account.
func GenerateTotpSecret(issuer, accountName string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: accountName,
		SecretSize:  SECRET_SIZE,
	})
	if err != nil {
		slog.Error("Failed to generate totp secret", "accountName", accountName, "issuer", issuer, "error", err)
		return "", err
	}
	slog.Info("Generated new totp secret", "accountName", accountName)
	return key.Secret(), nil
}

// ValidateTotpPasscode checks a 6-digit passcode against a secret for the
// current time window. Codes from the adjacent window are accepted to allow
// for clock skew. A code is not consumed on success: the same code verifies
// again inside its window.
func ValidateTotpPasscode(totpSecret, passcode string) (bool, error) {
	valid, err := totp.ValidateCustom(passcode, totpSecret, time.Now().UTC(), totp.ValidateOpts{
		Period:    PERIOD,
		Skew:      SKEW,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		slog.Error("Failed to validate totp passcode", "error", err)
		return false, err
	}
	return valid, nil
}

// BuildProvisioningURI builds the otpauth:// URI an authenticator app enrolls
// from. Deterministic for a given secret and labels.
func BuildProvisioningURI(totpSecret, issuer, accountName string) string {
	v := url.Values{}
	v.Set("secret", totpSecret)
	v.Set("issuer", issuer)
	v.Set("algorithm", otp.AlgorithmSHA1.String())
	v.Set("digits", otp.DigitsSix.String())
	v.Set("period", fmt.Sprintf("%d", PERIOD))

	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + issuer + ":" + accountName,
		RawQuery: v.Encode(),
	}
	return u.String()
}

// RenderQRCode renders a provisioning URI as a base64-encoded PNG suitable
// for inline display. The raw URI stays available for manual entry.
func RenderQRCode(provisioningURI string, size int) (string, error) {
	key, err := otp.NewKeyFromURL(provisioningURI)
	if err != nil {
		return "", fmt.Errorf("failed to parse provisioning uri: %w", err)
	}

	img, err := key.Image(size, size)
	if err != nil {
		return "", fmt.Errorf("failed to render qr image: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode qr png: %w", err)
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// GenerateCurrentPasscode derives the passcode for the current time window.
// Used by tests, never by the login flow.
func GenerateCurrentPasscode(totpSecret string) (string, error) {
	code, err := totp.GenerateCodeCustom(totpSecret, time.Now().UTC(), totp.ValidateOpts{
		Period:    PERIOD,
		Skew:      SKEW,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		slog.Error("Failed to generate totp passcode", "error", err)
		return "", err
	}
	return code, nil
}
