package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	token, err := Generate("secreto", "u-1", "ADMIN", "williammetal", 60)
	require.NoError(t, err)

	userID, role, err := Parse("secreto", token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
	assert.Equal(t, "ADMIN", role)
}

func TestParse_WrongSecret(t *testing.T) {
	token, err := Generate("secreto", "u-1", "ADMIN", "williammetal", 60)
	require.NoError(t, err)

	_, _, err = Parse("otro", token)
	assert.Error(t, err)
}

func TestParse_Expired(t *testing.T) {
	token, err := Generate("secreto", "u-1", "EMPLOYEE", "williammetal", -5)
	require.NoError(t, err)

	_, _, err = Parse("secreto", token)
	assert.Error(t, err)
}

func TestEmptySecret(t *testing.T) {
	_, err := Generate("", "u-1", "ADMIN", "x", 60)
	assert.Error(t, err)
	_, _, err = Parse("", "abc")
	assert.Error(t, err)
}
