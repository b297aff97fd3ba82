package security

import (
	"Rendezvous/internal/api/config"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withSecret(t *testing.T, secret string) {
	t.Helper()
	prev := config.Cfg
	cfg := config.Default()
	cfg.JWT.Secret = secret
	cfg.JWT.Issuer = "test"
	config.Cfg = cfg
	t.Cleanup(func() { config.Cfg = prev })
}

func TestGenerateAndValidateToken(t *testing.T) {
	withSecret(t, "s3cret")

	token, err := GenerateToken(42)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, "test", claims.Issuer)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	withSecret(t, "one")
	token, err := GenerateToken(1)
	require.NoError(t, err)

	withSecret(t, "two")
	_, err = ValidateToken(token)
	assert.Error(t, err)

	_, err = ValidateToken("garbage")
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "", BearerToken("Basic abc"))
	assert.Equal(t, "", BearerToken("Bearer "))
	assert.Equal(t, "", BearerToken(""))
}
