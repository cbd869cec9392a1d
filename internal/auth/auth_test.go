package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/quadro/internal/models"
)

func TestNewTokenIssuer_RequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := NewTokenIssuer("", time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)

	i, err := NewTokenIssuer("s3cret", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultTokenTTL, i.ttl)
}

func TestIssueAndParse(t *testing.T) {
	t.Parallel()

	i, err := NewTokenIssuer("s3cret", time.Hour)
	require.NoError(t, err)

	token, err := i.Issue("user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(token, "."))

	userID, err := i.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestParse_Rejects(t *testing.T) {
	t.Parallel()

	i, err := NewTokenIssuer("s3cret", time.Hour)
	require.NoError(t, err)
	other, err := NewTokenIssuer("different", time.Hour)
	require.NoError(t, err)

	foreign, err := other.Issue("user-1")
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("s3cret"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", foreign},
		{"none algorithm", noneToken},
		{"missing subject", noSub},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := i.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.ErrorIs(t, err, models.ErrUnauthorized)
		})
	}
}

func TestParse_Expired(t *testing.T) {
	t.Parallel()

	i, err := NewTokenIssuer("s3cret", time.Minute)
	require.NoError(t, err)

	issuedAt := time.Now().Add(-time.Hour)
	i.now = func() time.Time { return issuedAt }
	token, err := i.Issue("user-1")
	require.NoError(t, err)

	i.now = time.Now
	_, err = i.Parse(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "battery staple"))
	assert.False(t, CheckPassword("not-a-hash", "correct horse"))
}
