package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/scrypt"
)

// scrypt cost parameters. N is the CPU/memory cost, keyLen matches the
// stored 64-byte derived key.
const (
	scryptN      = 1 << 15
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
	saltBytes    = 16
)

// HashPassword derives a scrypt key from the password. When salt is empty a
// random 16-byte salt is generated. Both the hash and the salt are returned
// hex-encoded. Minimum password length is the caller's concern.
func HashPassword(password, salt string) (hash, outSalt string, err error) {
	if salt == "" {
		raw := make([]byte, saltBytes)
		if _, err := rand.Read(raw); err != nil {
			return "", "", err
		}
		salt = hex.EncodeToString(raw)
	}

	key, err := scrypt.Key([]byte(password), []byte(salt), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", "", err
	}

	return hex.EncodeToString(key), salt, nil
}

// VerifyPassword recomputes the derived key with the stored salt and compares
// it to the stored hash in constant time. Any derivation or decoding error is
// treated as a verification failure, never propagated.
func VerifyPassword(password, storedHash, storedSalt string) bool {
	key, err := scrypt.Key([]byte(password), []byte(storedSalt), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return false
	}

	expected, err := hex.DecodeString(storedHash)
	if err != nil || len(expected) != scryptKeyLen {
		return false
	}

	return subtle.ConstantTimeCompare(key, expected) == 1
}
