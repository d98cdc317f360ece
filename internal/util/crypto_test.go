package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAPIKey(t *testing.T) {
	key, err := GenerateAPIKey()
	require.NoError(t, err)
	assert.Len(t, key, 64)

	other, err := GenerateAPIKey()
	require.NoError(t, err)
	assert.NotEqual(t, key, other)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-password", hash)

	assert.True(t, CheckPasswordHash("s3cret-password", hash))
	assert.False(t, CheckPasswordHash("wrong-password", hash))
}

func TestIsValidEnum(t *testing.T) {
	valid := []string{"hour", "day", "month", "year"}

	assert.True(t, IsValidEnum("day", valid))
	assert.False(t, IsValidEnum("week", valid))
	assert.False(t, IsValidEnum("", valid))
}

func TestIsValidDate(t *testing.T) {
	assert.True(t, IsValidDate("2025-01-31"))
	assert.False(t, IsValidDate("2025-13-01"))
	assert.False(t, IsValidDate("01/31/2025"))
	assert.False(t, IsValidDate("not-a-date"))
}
