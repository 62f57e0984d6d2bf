package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	t.Parallel()

	hasher := &BcryptHasher{Cost: bcrypt.MinCost}

	for _, password := range []string{"secret1", "abcdef", "päss wörd with spaces"} {
		hash, err := hasher.Hash(password)
		require.NoError(t, err)
		assert.NotEqual(t, password, hash)

		assert.True(t, hasher.Compare(hash, password))
		assert.False(t, hasher.Compare(hash, password+"x"))
		assert.False(t, hasher.Compare(hash, ""))
	}
}

func TestBcryptHasher_Salted(t *testing.T) {
	t.Parallel()

	hasher := &BcryptHasher{Cost: bcrypt.MinCost}

	first, err := hasher.Hash("secret1")
	require.NoError(t, err)
	second, err := hasher.Hash("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestBcryptHasher_EmptyHash(t *testing.T) {
	t.Parallel()

	assert.False(t, NewBcryptHasher().Compare("", "secret1"))
}
