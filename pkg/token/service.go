package token

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// TokenService issues the two session tokens of the admin login flow.
type TokenService struct {
	generator         TokenGenerator
	accessTokenExpiry time.Duration
	tempTokenExpiry   time.Duration
}

// TokenServiceOption is a function that configures a TokenService
type TokenServiceOption func(*TokenService)

// WithAccessTokenExpiry sets the access token expiry duration
func WithAccessTokenExpiry(expiry time.Duration) TokenServiceOption {
	return func(s *TokenService) {
		s.accessTokenExpiry = expiry
	}
}

// WithTempTokenExpiry sets the temporary token expiry duration
func WithTempTokenExpiry(expiry time.Duration) TokenServiceOption {
	return func(s *TokenService) {
		s.tempTokenExpiry = expiry
	}
}

// NewTokenService creates a new TokenService
func NewTokenService(generator TokenGenerator, options ...TokenServiceOption) *TokenService {
	s := &TokenService{
		generator:         generator,
		accessTokenExpiry: DefaultAccessTokenExpiry,
		tempTokenExpiry:   DefaultTempTokenExpiry,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// GenerateTempToken issues the short-lived token for an authenticated but
// not yet verified session.
func (s *TokenService) GenerateTempToken(loginID uuid.UUID, username string) (string, time.Time, error) {
	return s.generator.GenerateToken(loginID, username, false, s.tempTokenExpiry)
}

// GenerateAccessToken issues the verified-session token. Only called after a
// successful second-factor check.
func (s *TokenService) GenerateAccessToken(loginID uuid.UUID, username string) (string, time.Time, error) {
	return s.generator.GenerateToken(loginID, username, true, s.accessTokenExpiry)
}

// ParseToken validates a token string and returns its claims.
func (s *TokenService) ParseToken(tokenStr string) (*Claims, error) {
	return s.generator.ParseToken(tokenStr)
}

// LoginID extracts the login id from parsed claims.
func (c *Claims) LoginUUID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.LoginID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid login_id claim: %w", err)
	}
	return id, nil
}

// TokenCookieService manages the session cookies that carry the tokens.
type TokenCookieService struct {
	tokenService *TokenService
	cookieSetter CookieSetter
}

// NewTokenCookieService creates a new TokenCookieService
func NewTokenCookieService(tokenService *TokenService, cookieSetter CookieSetter) *TokenCookieService {
	return &TokenCookieService{
		tokenService: tokenService,
		cookieSetter: cookieSetter,
	}
}

// SetTempTokenCookie issues a temp token and sets its cookie.
func (s *TokenCookieService) SetTempTokenCookie(w http.ResponseWriter, loginID uuid.UUID, username string) error {
	value, expire, err := s.tokenService.GenerateTempToken(loginID, username)
	if err != nil {
		return fmt.Errorf("failed to generate temp token: %w", err)
	}
	return s.cookieSetter.SetCookie(w, TEMP_TOKEN_NAME, value, expire)
}

// SetAccessTokenCookie issues an access token, sets its cookie and retires
// the temp cookie: the session has been promoted to verified.
func (s *TokenCookieService) SetAccessTokenCookie(w http.ResponseWriter, loginID uuid.UUID, username string) error {
	value, expire, err := s.tokenService.GenerateAccessToken(loginID, username)
	if err != nil {
		return fmt.Errorf("failed to generate access token: %w", err)
	}
	if err := s.cookieSetter.SetCookie(w, ACCESS_TOKEN_NAME, value, expire); err != nil {
		return err
	}
	return s.cookieSetter.ClearCookie(w, TEMP_TOKEN_NAME)
}

// ClearCookies removes both session cookies (logout).
func (s *TokenCookieService) ClearCookies(w http.ResponseWriter) error {
	if err := s.cookieSetter.ClearCookie(w, ACCESS_TOKEN_NAME); err != nil {
		return err
	}
	return s.cookieSetter.ClearCookie(w, TEMP_TOKEN_NAME)
}
