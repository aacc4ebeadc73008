package admin

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPassword_Bcrypt(t *testing.T) {
	cred, err := HashPassword("secret")
	require.NoError(t, err)
	assert.NotContains(t, cred, "secret")

	ok, legacy := CheckPassword(cred, "secret")
	assert.True(t, ok)
	assert.False(t, legacy)

	ok, _ = CheckPassword(cred, "wrong")
	assert.False(t, ok)
}

func TestCheckPassword_LegacyEncoding(t *testing.T) {
	cred := base64.StdEncoding.EncodeToString([]byte("secret"))

	ok, legacy := CheckPassword(cred, "secret")
	assert.True(t, ok)
	assert.True(t, legacy)

	ok, legacy = CheckPassword(cred, "wrong")
	assert.False(t, ok)
	assert.False(t, legacy)
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("ada@olambola.ng"))
	assert.ErrorIs(t, ValidateEmail("Ada <ada@olambola.ng>"), ErrInvalidAccount)
	assert.ErrorIs(t, ValidateEmail("ada"), ErrInvalidAccount)
}
