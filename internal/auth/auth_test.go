package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hasher := NewHasher(4)

	hash, err := hasher.Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)

	assert.True(t, hasher.Verify("s3cret", hash))
	assert.False(t, hasher.Verify("wrong", hash))
}

func TestHashIsSalted(t *testing.T) {
	hasher := NewHasher(4)

	first, err := hasher.Hash("s3cret")
	require.NoError(t, err)
	second, err := hasher.Hash("s3cret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestIssueAndParse(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)

	token, err := tokens.Issue("user-123")
	require.NoError(t, err)

	claims, err := tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestParseExpiredToken(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)

	// Build an already expired token with the same secret
	claims := &Claims{
		UserID: "user-123",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = tokens.Parse(expired)
	assert.Error(t, err)
}

func TestParseWrongSecret(t *testing.T) {
	issuer := NewTokens("secret-a", time.Hour)
	verifier := NewTokens("secret-b", time.Hour)

	token, err := issuer.Issue("user-123")
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsNonHMAC(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)

	// alg=none style tokens must not be accepted
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "user-123"})
	raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = tokens.Parse(raw)
	assert.Error(t, err)
}

func TestDefaultTTL(t *testing.T) {
	tokens := NewTokens("test-secret", 0)

	token, err := tokens.Issue("user-123")
	require.NoError(t, err)

	claims, err := tokens.Parse(token)
	require.NoError(t, err)

	// Zero ttl falls back to one day
	expected := time.Now().Add(24 * time.Hour)
	assert.WithinDuration(t, expected, claims.ExpiresAt.Time, time.Minute)
}
