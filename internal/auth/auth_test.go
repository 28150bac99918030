package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePairAndParse(t *testing.T) {
	tm := NewTokenManager("acc", "ref", time.Minute, time.Hour)

	pair, err := tm.GeneratePair("u-1", "admin")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)

	c, err := tm.ParseAccess(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, "u-1", c.UserID)
	assert.Equal(t, "admin", c.Role)

	c, err = tm.ParseRefresh(pair.Refresh)
	require.NoError(t, err)
	assert.Equal(t, TokenRefresh, c.Type)
}

func TestParseRejectsWrongTokenType(t *testing.T) {
	tm := NewTokenManager("acc", "ref", time.Minute, time.Hour)
	pair, err := tm.GeneratePair("u-1", "user")
	require.NoError(t, err)

	_, err = tm.ParseAccess(pair.Refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = tm.ParseRefresh(pair.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = tm.ParseAccess("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	tm := NewTokenManager("acc", "ref", time.Minute, time.Hour)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	pair, err := tm.GeneratePair("u-1", "user")
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.ParseAccess(pair.Access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("supersecret")
	require.NoError(t, err)
	assert.NoError(t, VerifyPassword("supersecret", hash))
	assert.Error(t, VerifyPassword("wrong-password", hash))
}
