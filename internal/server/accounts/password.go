package accounts

import (
	"crypto/rand"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

const saltSize = 16

func argon2Hash(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// HashPassword derives an argon2id hash of password with a fresh random salt.
func HashPassword(password string) (hash, salt []byte, err error) {
	salt = make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, err
	}
	return argon2Hash([]byte(password), salt), salt, nil
}

// CheckPassword reports whether password matches the stored hash/salt pair.
// The comparison is constant-time.
func CheckPassword(password string, hash, salt []byte) bool {
	candidate := argon2Hash([]byte(password), salt)
	return subtle.ConstantTimeCompare(hash, candidate) == 1
}
