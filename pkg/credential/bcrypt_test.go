package credential

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBcryptHashAndVerify(t *testing.T) {
	hasher := NewBcryptHasher(bcryptTestCost)

	hash, err := hasher.Hash("s3cret")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret", hash)

	require.True(t, hasher.Verify(hash, "s3cret"))
	require.False(t, hasher.Verify(hash, "wrong"))
	require.False(t, hasher.Verify("not-a-hash", "s3cret"))
}

func TestBcryptHashesAreSalted(t *testing.T) {
	hasher := NewBcryptHasher(bcryptTestCost)

	first, err := hasher.Hash("same-password")
	require.NoError(t, err)
	second, err := hasher.Hash("same-password")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.True(t, hasher.Verify(first, "same-password"))
	require.True(t, hasher.Verify(second, "same-password"))
}

// bcryptTestCost keeps the tests fast; production uses the default cost.
const bcryptTestCost = 4
