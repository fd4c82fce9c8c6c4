package auth

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/dreamteller/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionToken_RoundTrip(t *testing.T) {
	secret := []byte("k")
	tok, err := GenerateActionToken("u-1", ActionVerifyEmail, secret, time.Hour)
	require.NoError(t, err)

	id, err := ParseActionToken(tok, ActionVerifyEmail, secret)
	require.NoError(t, err)
	assert.Equal(t, "u-1", id)
}

func TestActionToken_WrongAction(t *testing.T) {
	secret := []byte("k")
	tok, err := GenerateActionToken("u-1", ActionVerifyEmail, secret, time.Hour)
	require.NoError(t, err)

	_, err = ParseActionToken(tok, ActionRecovery, secret)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestActionToken_Expired(t *testing.T) {
	secret := []byte("k")
	tok, err := GenerateActionToken("u-1", ActionRecovery, secret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseActionToken(tok, ActionRecovery, secret)
	require.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestActionToken_NotAnAccessToken(t *testing.T) {
	secret := []byte("k")
	tok, err := GenerateActionToken("u-1", ActionRecovery, secret, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(tok, secret)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestActionToken_AccessTokenRejected(t *testing.T) {
	secret := []byte("k")
	tok, err := GenerateToken(Identity{UserID: "u-1"}, secret, time.Hour)
	require.NoError(t, err)

	_, err = ParseActionToken(tok, ActionRecovery, secret)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}
