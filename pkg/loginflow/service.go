package loginflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/BotirBakhtiyarov/bbotir-portfolio/pkg/device"
	"github.com/BotirBakhtiyarov/bbotir-portfolio/pkg/login"
	"github.com/BotirBakhtiyarov/bbotir-portfolio/pkg/twofa"
)

// Error type constants
const (
	ErrorTypeInvalidCredentials = "invalid_credentials"
	ErrorTypeInvalidCode        = "invalid_code"
	ErrorTypeUnauthorized       = "unauthorized"
	ErrorTypeInternalError      = "internal_error"
)

// Redirect targets returned by the flow.
const (
	RedirectAdmin  = "/admin"
	RedirectSetup  = "/setup-2fa"
	RedirectVerify = "/verify-otp"
	RedirectLogin  = "/login"
)

// InvalidCodeMessage is the single user-facing message for every failed code
// check. It never distinguishes a wrong code from a missing device.
const InvalidCodeMessage = "Invalid code. Please try again."

// Session describes the caller's session state as the HTTP layer knows it:
// which login the session belongs to (uuid.Nil when anonymous) and whether
// the second factor has already been passed.
type Session struct {
	LoginID       uuid.UUID
	Username      string
	Authenticated bool
	Verified      bool
}

// Result contains the outcome of a login flow step.
type Result struct {
	Success bool
	// Redirect is where the browser should go next; empty when the current
	// view should be re-rendered with ErrorResponse.
	Redirect string
	// RequiresTempToken is set when the caller must establish the
	// authenticated-unverified session cookie.
	RequiresTempToken bool
	// SessionVerified is set when the caller must promote the session to
	// verified (issue the access token).
	SessionVerified bool
	LoginID         uuid.UUID
	Username        string
	ErrorResponse   *Error
}

// Error represents a structured error from the login flow.
type Error struct {
	Type    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// EnrollmentView is the payload for the enrollment page: the provisioning
// URI plus its QR rendering. The secret itself never leaves through any
// other field.
type EnrollmentView struct {
	AccountName string
	ConfigURL   string
	QRCodePNG   string // base64-encoded PNG
}

// LoginFlowService orchestrates the admin login state machine:
//
//	ANONYMOUS -> AUTHENTICATED_UNVERIFIED -> (ENROLLING | VERIFYING) -> VERIFIED
//
// Credential checks, device records and code verification are delegated to
// the login, device and twofa packages.
type LoginFlowService struct {
	loginService *login.LoginService
	deviceRepo   device.DeviceRepository
	issuer       string
	qrSize       int
}

// LoginFlowOption is a function that configures a LoginFlowService
type LoginFlowOption func(*LoginFlowService)

// WithIssuer sets the issuer label used in provisioning URIs
func WithIssuer(issuer string) LoginFlowOption {
	return func(s *LoginFlowService) {
		s.issuer = issuer
	}
}

// WithQRSize sets the rendered QR code size in pixels
func WithQRSize(size int) LoginFlowOption {
	return func(s *LoginFlowService) {
		s.qrSize = size
	}
}

// NewLoginFlowService creates a new login flow service.
func NewLoginFlowService(loginService *login.LoginService, deviceRepo device.DeviceRepository, opts ...LoginFlowOption) *LoginFlowService {
	s := &LoginFlowService{
		loginService: loginService,
		deviceRepo:   deviceRepo,
		issuer:       twofa.DefaultIssuer,
		qrSize:       200,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessLogin handles a submitted login form. On valid credentials the
// session becomes authenticated-unverified and the result redirects to
// enrollment or verification depending on whether a confirmed device exists.
func (s *LoginFlowService) ProcessLogin(ctx context.Context, session Session, username, password string) Result {
	// Already fully logged in: repeated submits are safe.
	if session.Authenticated && session.Verified {
		return Result{Success: true, Redirect: RedirectAdmin}
	}

	loginResult, err := s.loginService.Login(ctx, username, password)
	if err != nil {
		if errors.Is(err, login.ErrInvalidCredentials) {
			// No device lookup happens on a failed credential check.
			return s.errorResult(ErrorTypeInvalidCredentials, "Invalid username or password.")
		}
		slog.Error("Credential check failed", "err", err)
		return s.errorResult(ErrorTypeInternalError, "Something went wrong. Please try again later.")
	}

	redirect, err := s.postLoginRedirect(ctx, loginResult.LoginID)
	if err != nil {
		return s.errorResult(ErrorTypeInternalError, "Something went wrong. Please try again later.")
	}

	return Result{
		Success:           true,
		Redirect:          redirect,
		RequiresTempToken: true,
		LoginID:           loginResult.LoginID,
		Username:          loginResult.Username,
	}
}

// postLoginRedirect decides the second-factor branch for an authenticated login.
func (s *LoginFlowService) postLoginRedirect(ctx context.Context, loginID uuid.UUID) (string, error) {
	_, err := s.deviceRepo.FindConfirmedByLoginID(ctx, loginID)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			return RedirectSetup, nil
		}
		slog.Error("Failed to look up confirmed device", "loginId", loginID, "err", err)
		return "", fmt.Errorf("failed to look up confirmed device: %w", err)
	}
	return RedirectVerify, nil
}

// ProcessEnrollment prepares the enrollment view for an authenticated
// session: fetch-or-create the unconfirmed device and render its
// provisioning URI. Re-entry after confirmation redirects to verification.
func (s *LoginFlowService) ProcessEnrollment(ctx context.Context, session Session) (EnrollmentView, Result) {
	if !session.Authenticated {
		return EnrollmentView{}, s.unauthorizedResult()
	}

	// Enrollment is not re-enterable once a device is confirmed.
	_, err := s.deviceRepo.FindConfirmedByLoginID(ctx, session.LoginID)
	if err == nil {
		return EnrollmentView{}, Result{Success: true, Redirect: RedirectVerify}
	}
	if !errors.Is(err, device.ErrDeviceNotFound) {
		slog.Error("Failed to look up confirmed device", "loginId", session.LoginID, "err", err)
		return EnrollmentView{}, s.errorResult(ErrorTypeInternalError, "Something went wrong. Please try again later.")
	}

	dev, err := s.getOrCreateDevice(ctx, session)
	if err != nil {
		return EnrollmentView{}, s.errorResult(ErrorTypeInternalError, "Something went wrong. Please try again later.")
	}

	configURL := twofa.BuildProvisioningURI(dev.SecretKey, s.issuer, session.Username)
	qr, err := twofa.RenderQRCode(configURL, s.qrSize)
	if err != nil {
		slog.Error("Failed to render enrollment QR code", "loginId", session.LoginID, "err", err)
		return EnrollmentView{}, s.errorResult(ErrorTypeInternalError, "Something went wrong. Please try again later.")
	}

	return EnrollmentView{
		AccountName: session.Username,
		ConfigURL:   configURL,
		QRCodePNG:   qr,
	}, Result{Success: true}
}

// ConfirmEnrollment checks a submitted code against the session's unconfirmed
// device. On success the device is confirmed and the session is promoted to
// verified.
func (s *LoginFlowService) ConfirmEnrollment(ctx context.Context, session Session, passcode string) Result {
	if !session.Authenticated {
		return s.unauthorizedResult()
	}

	// A confirmed device means enrollment already happened; send the user
	// to the standing verification step instead.
	_, err := s.deviceRepo.FindConfirmedByLoginID(ctx, session.LoginID)
	if err == nil {
		return Result{Success: true, Redirect: RedirectVerify}
	}
	if !errors.Is(err, device.ErrDeviceNotFound) {
		slog.Error("Failed to look up confirmed device", "loginId", session.LoginID, "err", err)
		return s.errorResult(ErrorTypeInternalError, "Something went wrong. Please try again later.")
	}

	dev, err := s.deviceRepo.FindByLoginIDAndName(ctx, session.LoginID, device.DefaultDeviceName)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			// No device was ever created for this session; do not reveal
			// that to the submitter.
			return s.errorResult(ErrorTypeInvalidCode, InvalidCodeMessage)
		}
		slog.Error("Failed to look up device", "loginId", session.LoginID, "err", err)
		return s.errorResult(ErrorTypeInternalError, "Something went wrong. Please try again later.")
	}

	valid, err := twofa.ValidateTotpPasscode(dev.SecretKey, passcode)
	if err != nil || !valid {
		return s.errorResult(ErrorTypeInvalidCode, InvalidCodeMessage)
	}

	if err := s.deviceRepo.Confirm(ctx, dev.ID); err != nil {
		slog.Error("Failed to confirm device", "loginId", session.LoginID, "deviceId", dev.ID, "err", err)
		return s.errorResult(ErrorTypeInternalError, "Something went wrong. Please try again later.")
	}

	slog.Info("Device enrolled and confirmed", "loginId", session.LoginID, "deviceId", dev.ID)
	return Result{
		Success:         true,
		Redirect:        RedirectAdmin,
		SessionVerified: true,
		LoginID:         session.LoginID,
		Username:        session.Username,
	}
}

// ProcessVerification handles the standing verification step for returning
// users. An empty passcode renders the view; a submitted passcode is checked
// against the confirmed device.
func (s *LoginFlowService) ProcessVerification(ctx context.Context, session Session, passcode string) Result {
	if !session.Authenticated {
		return s.unauthorizedResult()
	}

	dev, err := s.deviceRepo.FindConfirmedByLoginID(ctx, session.LoginID)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			// Inconsistent state (verification without enrollment):
			// recover by sending the user to setup.
			return Result{Success: true, Redirect: RedirectSetup}
		}
		slog.Error("Failed to look up confirmed device", "loginId", session.LoginID, "err", err)
		return s.errorResult(ErrorTypeInternalError, "Something went wrong. Please try again later.")
	}

	if session.Verified {
		return Result{Success: true, Redirect: RedirectAdmin}
	}

	if passcode == "" {
		// GET: render the verification view.
		return Result{Success: true}
	}

	valid, err := twofa.ValidateTotpPasscode(dev.SecretKey, passcode)
	if err != nil || !valid {
		return s.errorResult(ErrorTypeInvalidCode, InvalidCodeMessage)
	}

	return Result{
		Success:         true,
		Redirect:        RedirectAdmin,
		SessionVerified: true,
		LoginID:         session.LoginID,
		Username:        session.Username,
	}
}

// getOrCreateDevice runs the atomic fetch-or-create for the session's default
// device. The candidate secret is only used when the repository inserts.
func (s *LoginFlowService) getOrCreateDevice(ctx context.Context, session Session) (device.Device, error) {
	secret, err := twofa.GenerateTotpSecret(s.issuer, session.Username)
	if err != nil {
		return device.Device{}, fmt.Errorf("failed to generate totp secret: %w", err)
	}

	dev, err := s.deviceRepo.GetOrCreateUnconfirmed(ctx, device.GetOrCreateDeviceParams{
		LoginID:   session.LoginID,
		Name:      device.DefaultDeviceName,
		SecretKey: secret,
	})
	if err != nil {
		slog.Error("Failed to get or create device", "loginId", session.LoginID, "err", err)
		return device.Device{}, fmt.Errorf("failed to get or create device: %w", err)
	}
	return dev, nil
}

func (s *LoginFlowService) errorResult(errorType, message string) Result {
	return Result{
		Success: false,
		ErrorResponse: &Error{
			Type:    errorType,
			Message: message,
		},
	}
}

func (s *LoginFlowService) unauthorizedResult() Result {
	return Result{
		Success:  false,
		Redirect: RedirectLogin,
		ErrorResponse: &Error{
			Type:    ErrorTypeUnauthorized,
			Message: "Authentication required.",
		},
	}
}
