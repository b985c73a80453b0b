package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpaqueToken(t *testing.T) {
	raw, hashed, err := NewOpaqueToken()
	require.NoError(t, err)

	assert.Len(t, raw, 64)     // 32 random bytes, hex
	assert.Len(t, hashed, 64)  // sha256, hex
	assert.NotEqual(t, raw, hashed)
	assert.Equal(t, HashToken(raw), hashed)
}

func TestNewOpaqueToken_Unique(t *testing.T) {
	a, _, err := NewOpaqueToken()
	require.NoError(t, err)
	b, _, err := NewOpaqueToken()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestHashToken_Deterministic(t *testing.T) {
	assert.Equal(t, HashToken("abc"), HashToken("abc"))
	assert.NotEqual(t, HashToken("abc"), HashToken("abd"))
}
