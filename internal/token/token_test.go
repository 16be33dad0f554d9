package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestIssueAndParse(t *testing.T) {
	m := NewManager(secret, time.Hour)

	signed, err := m.Issue(Subject{UserID: "user-1", Username: "alice", Role: "moderator"})
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := m.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "moderator", claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestParseExpired(t *testing.T) {
	m := NewManager(secret, time.Minute)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	signed, err := m.Issue(Subject{UserID: "user-1"})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(signed)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestParseWrongSecret(t *testing.T) {
	signed, err := NewManager(secret, time.Hour).Issue(Subject{UserID: "user-1"})
	require.NoError(t, err)

	_, err = NewManager("another-secret-another-secret-00", time.Hour).Parse(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewManager(secret, time.Hour).Parse(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseGarbage(t *testing.T) {
	_, err := NewManager(secret, time.Hour).Parse("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
