package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidUsername(t *testing.T) {
	valid := []string{"ama", "kwame_123", "Seller_2026", "abc"}
	for _, u := range valid {
		assert.True(t, IsValidUsername(u), u)
	}

	invalid := []string{"", "ab", "has space", "emoji😀", "dash-ed", "way_too_long_username_over_thirty_chars"}
	for _, u := range invalid {
		assert.False(t, IsValidUsername(u), u)
	}
}

func TestIsPasswordStrong(t *testing.T) {
	assert.True(t, IsPasswordStrong("Str0ng!pass"))
	assert.False(t, IsPasswordStrong("Sh0rt!a"))
	assert.False(t, IsPasswordStrong("nouppercase1!"))
	assert.False(t, IsPasswordStrong("NOLOWERCASE1!"))
	assert.False(t, IsPasswordStrong("NoDigits!!aa"))
	assert.False(t, IsPasswordStrong("NoSpecial123aa"))
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Str0ng!pass")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ng!pass", hash)
	assert.True(t, CheckPassword("Str0ng!pass", hash))
	assert.False(t, CheckPassword("Wr0ng!pass", hash))
}

func TestGenerateEmailToken(t *testing.T) {
	a, err := GenerateEmailToken()
	require.NoError(t, err)
	b, err := GenerateEmailToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestGeneratePhoneCode(t *testing.T) {
	for i := 0; i < 20; i++ {
		code, err := GeneratePhoneCode()
		require.NoError(t, err)
		assert.Regexp(t, `^\d{6}$`, code)
	}
}

func TestHashVerificationSecret(t *testing.T) {
	a := HashVerificationSecret("secret")
	b := HashVerificationSecret("secret")
	c := HashVerificationSecret("other")

	// Deterministic so redemption can look up by hash, and never the plaintext.
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, "secret", a)
	assert.Len(t, a, 64)
}
