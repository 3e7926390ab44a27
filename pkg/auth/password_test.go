package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, CheckPassword(hash, "s3cret-pass"))
	assert.False(t, CheckPassword(hash, "wrong-pass"))
}

func TestGeneratePassword(t *testing.T) {
	p1, err := GeneratePassword(12)
	require.NoError(t, err)
	assert.Len(t, p1, 12)

	p2, err := GeneratePassword(12)
	require.NoError(t, err)
	assert.NotEqual(t, p1, p2)

	for _, r := range p1 {
		assert.True(t, strings.ContainsRune(passwordAlphabet, r))
	}
}

func TestGeneratePasswordDefaultLength(t *testing.T) {
	p, err := GeneratePassword(0)
	require.NoError(t, err)
	assert.Len(t, p, 12)
}
