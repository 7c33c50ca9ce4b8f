package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator() *JwtTokenGenerator {
	return NewJwtTokenGenerator("test-secret", "bbotir.xyz", "portfolio-admin")
}

func TestJwtTokenGenerator_RoundTrip(t *testing.T) {
	g := newTestGenerator()
	loginID := uuid.New()

	tokenStr, expiresAt, err := g.GenerateToken(loginID, "alice", true, 15*time.Minute)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))

	claims, err := g.ParseToken(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, loginID.String(), claims.LoginID)
	assert.True(t, claims.TwofaVerified)
	assert.Equal(t, "bbotir.xyz", claims.Issuer)

	parsed, err := claims.LoginUUID()
	require.NoError(t, err)
	assert.Equal(t, loginID, parsed)
}

func TestJwtTokenGenerator_WrongSecretRejected(t *testing.T) {
	g := newTestGenerator()
	tokenStr, _, err := g.GenerateToken(uuid.New(), "alice", false, time.Minute)
	require.NoError(t, err)

	other := NewJwtTokenGenerator("other-secret", "bbotir.xyz", "portfolio-admin")
	_, err = other.ParseToken(tokenStr)
	assert.Error(t, err)
}

func TestJwtTokenGenerator_ExpiredRejected(t *testing.T) {
	g := newTestGenerator()
	tokenStr, _, err := g.GenerateToken(uuid.New(), "alice", false, -time.Minute)
	require.NoError(t, err)

	_, err = g.ParseToken(tokenStr)
	assert.Error(t, err)
}

func TestTokenService_TempVersusAccess(t *testing.T) {
	service := NewTokenService(newTestGenerator())
	loginID := uuid.New()

	tempStr, _, err := service.GenerateTempToken(loginID, "alice")
	require.NoError(t, err)
	tempClaims, err := service.ParseToken(tempStr)
	require.NoError(t, err)
	assert.False(t, tempClaims.TwofaVerified)

	accessStr, _, err := service.GenerateAccessToken(loginID, "alice")
	require.NoError(t, err)
	accessClaims, err := service.ParseToken(accessStr)
	require.NoError(t, err)
	assert.True(t, accessClaims.TwofaVerified)
}
