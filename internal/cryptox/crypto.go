// Package cryptox derives the keys that protect the server's session cookies.
package cryptox

import (
	"crypto/sha256"

	"golang.org/x/crypto/argon2"
)

const keyLen = 32

var (
	authSalt = []byte("mediavault/session/auth")
	encSalt  = []byte("mediavault/session/enc")
)

// DeriveKey stretches secret into a 32-byte key with Argon2id.
func DeriveKey(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, keyLen)
}

// SessionKeys returns the HMAC key and the AES-256 key for the cookie
// session store. Both are derived from the configured secret so cookies
// survive restarts as long as the secret does.
func SessionKeys(secret string) (authKey, encKey []byte) {
	master := DeriveKey([]byte(secret), authSalt)
	sum := sha256.Sum256(master)
	return master, DeriveKey(sum[:], encSalt)
}
