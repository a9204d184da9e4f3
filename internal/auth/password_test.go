package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := HashPassword("segredo123")
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "segredo123"))
	assert.False(t, VerifyPassword(hash, "errado"))
}

func TestVerifyPlaintextVariant(t *testing.T) {
	// credential files from the plaintext variant store the password as-is
	assert.True(t, VerifyPassword("segredo123", "segredo123"))
	assert.False(t, VerifyPassword("segredo123", "outro"))
}

func TestVerifyHashIsNotComparedAsPlaintext(t *testing.T) {
	hash, err := HashPassword("segredo123")
	require.NoError(t, err)
	// pasting the stored hash as the password must not log in
	assert.False(t, VerifyPassword(hash, hash))
}
