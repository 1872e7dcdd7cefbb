package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/klarkent2022/smart-irrigation/internal/utils"
)

func TestPassword(t *testing.T) {
	digest, err := utils.HashPassword("hunter2", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", digest)

	assert.True(t, utils.CheckPassword("hunter2", digest))
	assert.False(t, utils.CheckPassword("hunter3", digest))
	assert.False(t, utils.CheckPassword("hunter2", "not-a-digest"))

	again, err := utils.HashPassword("hunter2", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, digest, again, "digests are salted")
}
