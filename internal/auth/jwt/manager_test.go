package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(accessExpiry time.Duration) *Manager {
	return NewManager("segredo-de-teste-com-32-caracteres", "webmarcas", accessExpiry, 24*time.Hour)
}

func TestGenerateAndValidate(t *testing.T) {
	m := newTestManager(15 * time.Minute)

	pair, err := m.GenerateTokenPair("u1", "admin@webmarcas.net", "admin")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, int64(900), pair.ExpiresIn)

	claims, err := m.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "admin@webmarcas.net", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "webmarcas", claims.Issuer)
}

func TestValidateRejectsTampering(t *testing.T) {
	m := newTestManager(15 * time.Minute)
	other := NewManager("outro-segredo-completamente-difere", "webmarcas", 15*time.Minute, 24*time.Hour)

	pair, err := m.GenerateTokenPair("u1", "admin@webmarcas.net", "admin")
	require.NoError(t, err)

	t.Run("assinatura de outro segredo", func(t *testing.T) {
		_, err := other.ValidateToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token truncado", func(t *testing.T) {
		_, err := m.ValidateToken(pair.AccessToken[:len(pair.AccessToken)-5] + "xxxxx")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("lixo", func(t *testing.T) {
		_, err := m.ValidateToken("nem.um.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestExpiredToken(t *testing.T) {
	m := newTestManager(-time.Minute)

	pair, err := m.GenerateTokenPair("u1", "admin@webmarcas.net", "admin")
	require.NoError(t, err)

	_, err = m.ValidateToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestRefreshAccessToken(t *testing.T) {
	m := newTestManager(15 * time.Minute)

	pair, err := m.GenerateTokenPair("u1", "admin@webmarcas.net", "admin")
	require.NoError(t, err)

	access, err := m.RefreshAccessToken(pair.RefreshToken)
	require.NoError(t, err)

	claims, err := m.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}
