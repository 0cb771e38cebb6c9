package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_GeneratesSalt(t *testing.T) {
	hash, salt, err := HashPassword("correct horse battery staple", "")
	require.NoError(t, err)
	assert.Len(t, salt, 32)  // 16 random bytes, hex encoded
	assert.Len(t, hash, 128) // 64-byte derived key, hex encoded

	// A second call must pick a different salt and therefore a different hash.
	hash2, salt2, err := HashPassword("correct horse battery staple", "")
	require.NoError(t, err)
	assert.NotEqual(t, salt, salt2)
	assert.NotEqual(t, hash, hash2)
}

func TestHashPassword_DeterministicWithSalt(t *testing.T) {
	const salt = "00112233445566778899aabbccddeeff"

	hash1, outSalt, err := HashPassword("my-password", salt)
	require.NoError(t, err)
	assert.Equal(t, salt, outSalt)

	hash2, _, err := HashPassword("my-password", salt)
	require.NoError(t, err)
	assert.Equal(t, hash1, hash2)
}

func TestVerifyPassword_RoundTrip(t *testing.T) {
	hash, salt, err := HashPassword("s3cret-passphrase", "")
	require.NoError(t, err)

	assert.True(t, VerifyPassword("s3cret-passphrase", hash, salt))
	assert.False(t, VerifyPassword("s3cret-passphrase!", hash, salt))
	assert.False(t, VerifyPassword("", hash, salt))
}

func TestVerifyPassword_MalformedStoredValues(t *testing.T) {
	hash, salt, err := HashPassword("whatever", "")
	require.NoError(t, err)

	// Corrupt hash hex never errors, just fails verification.
	assert.False(t, VerifyPassword("whatever", "zz"+hash[2:], salt))
	// Truncated hash is the wrong length.
	assert.False(t, VerifyPassword("whatever", hash[:64], salt))
	// A different salt derives a different key.
	assert.False(t, VerifyPassword("whatever", hash, "deadbeefdeadbeefdeadbeefdeadbeef"))
}
