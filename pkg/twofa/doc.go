// Package twofa provides the TOTP primitives behind the admin two-factor
// login flow: secret generation, passcode validation, provisioning URIs and
// QR rendering for authenticator-app enrollment.
//
// # Overview
//
// The package is a thin, stateless layer over pquerna/otp:
//   - 6-digit codes, 30 second period, SHA1, one window of allowed skew
//     (the parameters every mainstream authenticator app defaults to)
//   - otpauth:// provisioning URIs with issuer and account labels
//   - QR code rendering to base64 PNG for inline display
//
// Device records and confirmation state live in pkg/device; the login state
// machine that consumes both lives in pkg/loginflow.
//
// # Code reuse within a window
//
// ValidateTotpPasscode is a pure check against the secret and clock. It does
// not mark a code as consumed, so a valid code verifies more than once inside
// its ~30s window. Single-use enforcement would need per-login last-used
// bookkeeping and is intentionally not done here.
package twofa
