package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveKey(t *testing.T) {
	k1 := DeriveKey([]byte("secret-password"), []byte("salt-1"))
	k2 := DeriveKey([]byte("secret-password"), []byte("salt-1"))
	k3 := DeriveKey([]byte("secret-password"), []byte("salt-2"))
	k4 := DeriveKey([]byte("other-password"), []byte("salt-1"))

	assert.Len(t, k1, 32)
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
	assert.NotEqual(t, k1, k4)
}

func TestSessionKeys(t *testing.T) {
	auth1, enc1 := SessionKeys("0123456789abcdef0123456789abcdef")
	auth2, enc2 := SessionKeys("0123456789abcdef0123456789abcdef")
	auth3, _ := SessionKeys("another-secret-another-secret-xx")

	assert.Len(t, auth1, 32)
	assert.Len(t, enc1, 32)
	assert.NotEqual(t, auth1, enc1)
	assert.Equal(t, auth1, auth2)
	assert.Equal(t, enc1, enc2)
	assert.NotEqual(t, auth1, auth3)
}
