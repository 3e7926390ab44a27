package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeIndianMobile(t *testing.T) {
	normalized, err := Normalize("98765 43210", "")
	require.NoError(t, err)
	assert.Equal(t, "+919876543210", normalized)
}

func TestNormalizeAlreadyE164(t *testing.T) {
	normalized, err := Normalize("+919876543210", "")
	require.NoError(t, err)
	assert.Equal(t, "+919876543210", normalized)
}

func TestNormalizeWithRegionOverride(t *testing.T) {
	normalized, err := Normalize("(650) 253-0000", "US")
	require.NoError(t, err)
	assert.Equal(t, "+16502530000", normalized)
}

func TestNormalizeInvalid(t *testing.T) {
	_, err := Normalize("12345", "")
	assert.Error(t, err)
}

func TestNormalizeEmpty(t *testing.T) {
	_, err := Normalize("", "")
	assert.Error(t, err)
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("9876543210", ""))
	assert.False(t, IsValid("12345", ""))
	assert.False(t, IsValid("not a number", ""))
}
