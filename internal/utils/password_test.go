package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/video-rental/internal/utils"
)

func TestHashPassword(t *testing.T) {
	hash, err := utils.HashPassword("secret1", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)

	assert.True(t, utils.VerifyPassword(hash, "secret1"))
	assert.False(t, utils.VerifyPassword(hash, "secret2"))
	assert.False(t, utils.VerifyPassword("not-a-hash", "secret1"))
}

func TestHashPasswordSalts(t *testing.T) {
	a, err := utils.HashPassword("secret1", 4)
	require.NoError(t, err)
	b, err := utils.HashPassword("secret1", 4)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
