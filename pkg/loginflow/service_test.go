package loginflow

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BotirBakhtiyarov/bbotir-portfolio/pkg/device"
	"github.com/BotirBakhtiyarov/bbotir-portfolio/pkg/login"
	"github.com/BotirBakhtiyarov/bbotir-portfolio/pkg/twofa"
)

type flowFixture struct {
	service      *LoginFlowService
	loginService *login.LoginService
	deviceRepo   *device.InMemoryDeviceRepository
	loginID      uuid.UUID
}

func setupFlow(t *testing.T) *flowFixture {
	t.Helper()
	ctx := context.Background()

	loginRepo := login.NewInMemoryLoginRepository()
	loginService := login.NewLoginService(loginRepo)
	deviceRepo := device.NewInMemoryDeviceRepository()

	created, err := loginService.CreateLogin(ctx, "alice", "correct-password")
	require.NoError(t, err)

	return &flowFixture{
		service:      NewLoginFlowService(loginService, deviceRepo),
		loginService: loginService,
		deviceRepo:   deviceRepo,
		loginID:      created.ID,
	}
}

func (f *flowFixture) authenticatedSession() Session {
	return Session{LoginID: f.loginID, Username: "alice", Authenticated: true}
}

// enroll walks the fixture user through a full successful enrollment.
func (f *flowFixture) enroll(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	_, result := f.service.ProcessEnrollment(ctx, f.authenticatedSession())
	require.True(t, result.Success)

	dev, err := f.deviceRepo.FindByLoginIDAndName(ctx, f.loginID, device.DefaultDeviceName)
	require.NoError(t, err)

	code, err := twofa.GenerateCurrentPasscode(dev.SecretKey)
	require.NoError(t, err)

	confirm := f.service.ConfirmEnrollment(ctx, f.authenticatedSession(), code)
	require.True(t, confirm.Success)
	require.True(t, confirm.SessionVerified)
}

func TestProcessLogin_NewUserRedirectsToSetup(t *testing.T) {
	f := setupFlow(t)
	ctx := context.Background()

	result := f.service.ProcessLogin(ctx, Session{}, "alice", "correct-password")
	require.True(t, result.Success)
	assert.Equal(t, RedirectSetup, result.Redirect)
	assert.True(t, result.RequiresTempToken)
	assert.False(t, result.SessionVerified)
	assert.Equal(t, f.loginID, result.LoginID)
}

func TestProcessLogin_WrongPassword(t *testing.T) {
	f := setupFlow(t)
	ctx := context.Background()

	result := f.service.ProcessLogin(ctx, Session{}, "alice", "wrong-password")
	assert.False(t, result.Success)
	require.NotNil(t, result.ErrorResponse)
	assert.Equal(t, ErrorTypeInvalidCredentials, result.ErrorResponse.Type)
	assert.False(t, result.RequiresTempToken)

	// No device was created or consulted on the failed attempt.
	_, err := f.deviceRepo.FindByLoginIDAndName(ctx, f.loginID, device.DefaultDeviceName)
	assert.ErrorIs(t, err, device.ErrDeviceNotFound)
}

func TestProcessLogin_ConfirmedDeviceRedirectsToVerify(t *testing.T) {
	f := setupFlow(t)
	ctx := context.Background()
	f.enroll(t)

	result := f.service.ProcessLogin(ctx, Session{}, "alice", "correct-password")
	require.True(t, result.Success)
	assert.Equal(t, RedirectVerify, result.Redirect)
}

func TestProcessLogin_AlreadyVerifiedIsIdempotent(t *testing.T) {
	f := setupFlow(t)
	ctx := context.Background()

	session := Session{LoginID: f.loginID, Username: "alice", Authenticated: true, Verified: true}
	result := f.service.ProcessLogin(ctx, session, "alice", "correct-password")
	require.True(t, result.Success)
	assert.Equal(t, RedirectAdmin, result.Redirect)
	assert.False(t, result.RequiresTempToken)
}

func TestProcessEnrollment_RequiresAuthentication(t *testing.T) {
	f := setupFlow(t)
	ctx := context.Background()

	_, result := f.service.ProcessEnrollment(ctx, Session{})
	assert.False(t, result.Success)
	assert.Equal(t, RedirectLogin, result.Redirect)
	require.NotNil(t, result.ErrorResponse)
	assert.Equal(t, ErrorTypeUnauthorized, result.ErrorResponse.Type)
}

func TestProcessEnrollment_ViewCarriesProvisioningURI(t *testing.T) {
	f := setupFlow(t)
	ctx := context.Background()

	view, result := f.service.ProcessEnrollment(ctx, f.authenticatedSession())
	require.True(t, result.Success)
	assert.Contains(t, view.ConfigURL, "otpauth://totp/")
	assert.Contains(t, view.ConfigURL, "alice")
	assert.NotEmpty(t, view.QRCodePNG)
	assert.Equal(t, "alice", view.AccountName)
}

func TestProcessEnrollment_IdempotentBeforeConfirmation(t *testing.T) {
	f := setupFlow(t)
	ctx := context.Background()

	first, result := f.service.ProcessEnrollment(ctx, f.authenticatedSession())
	require.True(t, result.Success)

	second, result := f.service.ProcessEnrollment(ctx, f.authenticatedSession())
	require.True(t, result.Success)

	// Repeated visits return the same secret, not a new one.
	assert.Equal(t, first.ConfigURL, second.ConfigURL)

	dev, err := f.deviceRepo.FindByLoginIDAndName(ctx, f.loginID, device.DefaultDeviceName)
	require.NoError(t, err)
	assert.False(t, dev.Confirmed)
}

func TestProcessEnrollment_NotReenterableOnceConfirmed(t *testing.T) {
	f := setupFlow(t)
	ctx := context.Background()
	f.enroll(t)

	_, result := f.service.ProcessEnrollment(ctx, f.authenticatedSession())
	require.True(t, result.Success)
	assert.Equal(t, RedirectVerify, result.Redirect)
}

func TestConfirmEnrollment_Success(t *testing.T) {
	f := setupFlow(t)
	ctx := context.Background()

	_, result := f.service.ProcessEnrollment(ctx, f.authenticatedSession())
	require.True(t, result.Success)

	dev, err := f.deviceRepo.FindByLoginIDAndName(ctx, f.loginID, device.DefaultDeviceName)
	require.NoError(t, err)
	code, err := twofa.GenerateCurrentPasscode(dev.SecretKey)
	require.NoError(t, err)

	confirm := f.service.ConfirmEnrollment(ctx, f.authenticatedSession(), code)
	require.True(t, confirm.Success)
	assert.Equal(t, RedirectAdmin, confirm.Redirect)
	assert.True(t, confirm.SessionVerified)

	confirmed, err := f.deviceRepo.FindConfirmedByLoginID(ctx, f.loginID)
	require.NoError(t, err)
	assert.Equal(t, dev.ID, confirmed.ID)
	assert.Equal(t, dev.SecretKey, confirmed.SecretKey)
}

func TestConfirmEnrollment_BadCodeKeepsDeviceUnconfirmed(t *testing.T) {
	f := setupFlow(t)
	ctx := context.Background()

	_, result := f.service.ProcessEnrollment(ctx, f.authenticatedSession())
	require.True(t, result.Success)

	confirm := f.service.ConfirmEnrollment(ctx, f.authenticatedSession(), "000000")
	assert.False(t, confirm.Success)
	require.NotNil(t, confirm.ErrorResponse)
	assert.Equal(t, ErrorTypeInvalidCode, confirm.ErrorResponse.Type)
	assert.Equal(t, InvalidCodeMessage, confirm.ErrorResponse.Message)

	_, err := f.deviceRepo.FindConfirmedByLoginID(ctx, f.loginID)
	assert.ErrorIs(t, err, device.ErrDeviceNotFound)

	// The step is re-entrant: a correct code still works afterwards.
	dev, err := f.deviceRepo.FindByLoginIDAndName(ctx, f.loginID, device.DefaultDeviceName)
	require.NoError(t, err)
	code, err := twofa.GenerateCurrentPasscode(dev.SecretKey)
	require.NoError(t, err)
	retry := f.service.ConfirmEnrollment(ctx, f.authenticatedSession(), code)
	assert.True(t, retry.Success)
}

func TestConfirmEnrollment_MissingDeviceLooksLikeBadCode(t *testing.T) {
	f := setupFlow(t)
	ctx := context.Background()

	// Confirm without ever visiting the enrollment view.
	confirm := f.service.ConfirmEnrollment(ctx, f.authenticatedSession(), "123456")
	assert.False(t, confirm.Success)
	require.NotNil(t, confirm.ErrorResponse)
	assert.Equal(t, ErrorTypeInvalidCode, confirm.ErrorResponse.Type)
	assert.Equal(t, InvalidCodeMessage, confirm.ErrorResponse.Message)
}

func TestProcessVerification_NoDeviceRedirectsToSetup(t *testing.T) {
	f := setupFlow(t)
	ctx := context.Background()

	result := f.service.ProcessVerification(ctx, f.authenticatedSession(), "")
	require.True(t, result.Success)
	assert.Equal(t, RedirectSetup, result.Redirect)
}

func TestProcessVerification_Success(t *testing.T) {
	f := setupFlow(t)
	ctx := context.Background()
	f.enroll(t)

	dev, err := f.deviceRepo.FindConfirmedByLoginID(ctx, f.loginID)
	require.NoError(t, err)
	code, err := twofa.GenerateCurrentPasscode(dev.SecretKey)
	require.NoError(t, err)

	result := f.service.ProcessVerification(ctx, f.authenticatedSession(), code)
	require.True(t, result.Success)
	assert.Equal(t, RedirectAdmin, result.Redirect)
	assert.True(t, result.SessionVerified)
}

func TestProcessVerification_BadCodeIsRetryable(t *testing.T) {
	f := setupFlow(t)
	ctx := context.Background()
	f.enroll(t)

	result := f.service.ProcessVerification(ctx, f.authenticatedSession(), "000000")
	assert.False(t, result.Success)
	require.NotNil(t, result.ErrorResponse)
	assert.Equal(t, ErrorTypeInvalidCode, result.ErrorResponse.Type)
	assert.False(t, result.SessionVerified)

	// Immediate retry with the right code succeeds; there is no lockout.
	dev, err := f.deviceRepo.FindConfirmedByLoginID(ctx, f.loginID)
	require.NoError(t, err)
	code, err := twofa.GenerateCurrentPasscode(dev.SecretKey)
	require.NoError(t, err)
	retry := f.service.ProcessVerification(ctx, f.authenticatedSession(), code)
	assert.True(t, retry.Success)
}

func TestProcessVerification_AlreadyVerifiedIsIdempotent(t *testing.T) {
	f := setupFlow(t)
	ctx := context.Background()
	f.enroll(t)

	session := Session{LoginID: f.loginID, Username: "alice", Authenticated: true, Verified: true}
	result := f.service.ProcessVerification(ctx, session, "")
	require.True(t, result.Success)
	assert.Equal(t, RedirectAdmin, result.Redirect)
}

func TestProcessVerification_RequiresAuthentication(t *testing.T) {
	f := setupFlow(t)
	ctx := context.Background()

	result := f.service.ProcessVerification(ctx, Session{}, "123456")
	assert.False(t, result.Success)
	assert.Equal(t, RedirectLogin, result.Redirect)
}

// Reaching VERIFIED always passes through an authenticated-unverified
// session first: an anonymous session can neither enroll nor verify.
func TestNoAnonymousPathToVerified(t *testing.T) {
	f := setupFlow(t)
	ctx := context.Background()
	f.enroll(t)

	dev, err := f.deviceRepo.FindConfirmedByLoginID(ctx, f.loginID)
	require.NoError(t, err)
	code, err := twofa.GenerateCurrentPasscode(dev.SecretKey)
	require.NoError(t, err)

	anonVerify := f.service.ProcessVerification(ctx, Session{}, code)
	assert.False(t, anonVerify.SessionVerified)

	anonConfirm := f.service.ConfirmEnrollment(ctx, Session{}, code)
	assert.False(t, anonConfirm.SessionVerified)
}

func TestConfirmedFlagIsMonotonic(t *testing.T) {
	f := setupFlow(t)
	ctx := context.Background()
	f.enroll(t)

	// A failed verification afterwards does not unconfirm the device.
	result := f.service.ProcessVerification(ctx, f.authenticatedSession(), "000000")
	assert.False(t, result.Success)

	dev, err := f.deviceRepo.FindConfirmedByLoginID(ctx, f.loginID)
	require.NoError(t, err)
	assert.True(t, dev.Confirmed)
}
