package token

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token name constants. The temp token marks an authenticated but not yet
// verified session; the access token is only issued after a successful
// second-factor check.
const (
	ACCESS_TOKEN_NAME = "access_token"
	TEMP_TOKEN_NAME   = "temp_token"
)

// Default token expiry durations
const (
	DefaultAccessTokenExpiry = 15 * time.Minute
	DefaultTempTokenExpiry   = 5 * time.Minute
)

// Claims carried by portfolio session tokens.
type Claims struct {
	Username      string `json:"username,omitempty"`
	LoginID       string `json:"login_id,omitempty"`
	TwofaVerified bool   `json:"twofa_verified,omitempty"`
	jwt.RegisteredClaims
}

// TokenGenerator interface defines methods for token operations
type TokenGenerator interface {
	// GenerateToken generates a token for a login with the given expiry
	GenerateToken(loginID uuid.UUID, username string, twofaVerified bool, expiry time.Duration) (string, time.Time, error)

	// ParseToken parses and validates a token, returning its claims
	ParseToken(tokenStr string) (*Claims, error)
}

// JwtTokenGenerator implements TokenGenerator with HS256-signed JWTs.
type JwtTokenGenerator struct {
	Secret   string
	Issuer   string
	Audience string
}

// NewJwtTokenGenerator creates a new JwtTokenGenerator
func NewJwtTokenGenerator(secret, issuer, audience string) *JwtTokenGenerator {
	return &JwtTokenGenerator{
		Secret:   secret,
		Issuer:   issuer,
		Audience: audience,
	}
}

// GenerateToken creates a new signed token for the login.
func (g *JwtTokenGenerator) GenerateToken(loginID uuid.UUID, username string, twofaVerified bool, expiry time.Duration) (string, time.Time, error) {
	claims := Claims{
		Username:      username,
		LoginID:       loginID.String(),
		TwofaVerified: twofaVerified,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().UTC().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
			NotBefore: jwt.NewNumericDate(time.Now().UTC().Add(-5 * time.Minute)),
			Issuer:    g.Issuer,
			Subject:   loginID.String(),
			ID:        uuid.New().String(),
			Audience:  jwt.ClaimStrings{g.Audience},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString([]byte(g.Secret))
	if err != nil {
		slog.Error("Failed to sign JWT claims", "err", err)
		return "", time.Time{}, err
	}
	return ss, claims.ExpiresAt.Time, nil
}

// ParseToken parses and validates a token string.
func (g *JwtTokenGenerator) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(g.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is invalid")
	}
	return claims, nil
}
