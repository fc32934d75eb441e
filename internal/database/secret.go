package database

import (
	"crypto/rand"

	"golang.org/x/crypto/argon2"
)

const saltLen = 16

func newSalt() ([]byte, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// hashSecret derives an argon2id hash of an account secret.
func hashSecret(secret string, salt []byte) []byte {
	return argon2.IDKey([]byte(secret), salt, 1, 64*1024, 4, 32)
}
