package jwttoken

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "capture-gateway/pkg/domain-errors"
)

const testSigningKey = "test-signing-key-at-least-32-bytes!!"

func mintToken(t *testing.T, key string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(key))
	require.NoError(t, err)
	return signed
}

func TestValidateToken_Valid(t *testing.T) {
	v := NewValidator(testSigningKey)
	signed := mintToken(t, testSigningKey, Claims{
		ReviewerID: "rev-123",
		ClientID:   "client-abc",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := v.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "rev-123", claims.ReviewerID)
	assert.Equal(t, "client-abc", claims.ClientID)
}

func TestValidateToken_Expired(t *testing.T) {
	v := NewValidator(testSigningKey)
	signed := mintToken(t, testSigningKey, Claims{
		ReviewerID: "rev-123",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	_, err := v.ValidateToken(signed)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "expired")
}

func TestValidateToken_WrongKey(t *testing.T) {
	v := NewValidator(testSigningKey)
	signed := mintToken(t, "a-different-key-entirely-0000000000", Claims{
		ReviewerID: "rev-123",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	_, err := v.ValidateToken(signed)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateToken_Garbage(t *testing.T) {
	v := NewValidator(testSigningKey)
	_, err := v.ValidateToken("not.a.token")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateToken_WrongAlgorithm(t *testing.T) {
	v := NewValidator(testSigningKey)
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{ReviewerID: "rev-123"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = v.ValidateToken(signed)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
