package utils

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Olga07122007/yatube-project/config"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "utils-test-secret")
	config.Load()
	os.Exit(m.Run())
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong horse"))
}

func TestSanitizeStripsMarkup(t *testing.T) {
	assert.Equal(t, "hello", Sanitize("<script>alert(1)</script>hello"))
	assert.Equal(t, "bold", Sanitize("<b>bold</b>"))
	assert.Equal(t, "plain text", Sanitize("plain text"))
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42, "leo", time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.UserID)
	assert.Equal(t, "leo", claims.Username)

	_, err = ParseToken(token + "tampered")
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := GenerateToken(42, "leo", -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(token)
	assert.Error(t, err)
}

func TestTokenBlacklist(t *testing.T) {
	token, err := GenerateToken(7, "anna", time.Hour)
	require.NoError(t, err)

	assert.False(t, IsTokenBlacklisted(token))
	BlacklistToken(token, time.Now().Add(time.Hour))
	assert.True(t, IsTokenBlacklisted(token))
}

func TestResetCodeSingleUse(t *testing.T) {
	code := GenerateResetCode(6)
	require.Len(t, code, 6)

	SaveResetCode("leo@example.com", code, 10*time.Minute)
	assert.False(t, VerifyAndConsumeResetCode("leo@example.com", "000000"))

	SaveResetCode("leo@example.com", code, 10*time.Minute)
	assert.True(t, VerifyAndConsumeResetCode("leo@example.com", code))
	assert.False(t, VerifyAndConsumeResetCode("leo@example.com", code), "codes are consumed on use")
}
