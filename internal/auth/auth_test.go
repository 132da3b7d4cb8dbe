package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueVerify(t *testing.T) {
	token, err := Issue("secret", time.Hour)
	require.NoError(t, err)
	require.NoError(t, Verify("secret", token))
}

func TestVerifyRejects(t *testing.T) {
	good, err := Issue("secret", time.Hour)
	require.NoError(t, err)

	expired, err := Issue("secret", -time.Minute)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	otherSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "someone",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	assert.Error(t, Verify("other", good))
	assert.ErrorIs(t, Verify("secret", expired), jwt.ErrTokenExpired)
	assert.Error(t, Verify("secret", none))
	assert.Error(t, Verify("secret", otherSubject))
	assert.Error(t, Verify("secret", "garbage"))
	assert.ErrorIs(t, Verify("", good), ErrNoSecret)
}

func TestIssueNeedsSecret(t *testing.T) {
	_, err := Issue("", time.Hour)
	assert.ErrorIs(t, err, ErrNoSecret)
}
