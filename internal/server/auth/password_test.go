package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_UsesFixedCost(t *testing.T) {
	h, err := HashPassword("pw123456")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(h))
	require.NoError(t, err)
	assert.Equal(t, PasswordCost, cost)

	h2, err := HashPassword("pw123456")
	require.NoError(t, err)
	assert.NotEqual(t, h, h2, "hashes are salted")
}

func TestCheckPassword(t *testing.T) {
	h, err := HashPassword("pw123456")
	require.NoError(t, err)

	ok, err := CheckPassword(h, "pw123456")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = CheckPassword(h, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = CheckPassword("", "anything")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = CheckPassword("not-a-bcrypt-hash", "x")
	require.Error(t, err)
}
