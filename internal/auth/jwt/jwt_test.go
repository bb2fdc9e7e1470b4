package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestJWTService_GenerateAndValidate(t *testing.T) {
	s, err := NewService(Config{SecretKey: testSecret, Duration: time.Hour})
	require.NoError(t, err)

	tok, err := s.GenerateToken("sess-42", "fleet_manager")
	assert.NoError(t, err)
	claims, err := s.ValidateToken(tok)
	assert.NoError(t, err)
	if assert.NotNil(t, claims) {
		assert.Equal(t, "sess-42", claims.SessionID)
		assert.Equal(t, "fleet_manager", claims.Role)
	}
}

func TestJWTService_Invalid(t *testing.T) {
	s, err := NewService(Config{SecretKey: testSecret, Duration: time.Hour})
	require.NoError(t, err)

	claims, err := s.ValidateToken("not-a-token")
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// token signed with a different key
	other, err := NewService(Config{SecretKey: "ffffffffffffffffffffffffffffffff", Duration: time.Hour})
	require.NoError(t, err)
	tok, err := other.GenerateToken("sess-1", "driver")
	require.NoError(t, err)
	claims, err = s.ValidateToken(tok)
	assert.Nil(t, claims)
	assert.Error(t, err)
}

func TestNewService_Validation(t *testing.T) {
	_, err := NewService(Config{SecretKey: "", Duration: time.Hour})
	assert.ErrorIs(t, err, ErrEmptySecretKey)

	_, err = NewService(Config{SecretKey: "short", Duration: time.Hour})
	assert.ErrorIs(t, err, ErrWeakSecretKey)

	_, err = NewService(Config{SecretKey: testSecret, Duration: 0})
	assert.ErrorIs(t, err, ErrInvalidDuration)
}
