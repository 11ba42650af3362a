package password

import (
	"testing"

	"github.com/alexedwards/argon2id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fastParams keeps the tests quick, production uses argon2id.DefaultParams.
var fastParams = &argon2id.Params{
	Memory:      8 * 1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

func TestHashVerify(t *testing.T) {
	h := New(fastParams)

	for _, plain := range []string{"password1", "ünïcødé-päss", "a", "with spaces and $ signs"} {
		hashed, err := h.Hash(plain)
		require.NoError(t, err)

		assert.NotEqual(t, plain, hashed)
		assert.True(t, h.Verify(plain, hashed), "verify(%q, hash(%q))", plain, plain)
		assert.False(t, h.Verify(plain+"x", hashed))
		assert.False(t, h.NeedsRehash(hashed))
	}
}

func TestHashIsSalted(t *testing.T) {
	h := New(fastParams)

	first, err := h.Hash("password1")
	require.NoError(t, err)

	second, err := h.Hash("password1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHashEmpty(t *testing.T) {
	_, err := New(nil).Hash("")
	require.ErrorIs(t, err, ErrEmptyPassword)
}

func TestVerifyMalformed(t *testing.T) {
	h := New(fastParams)

	for _, hashed := range []string{
		"",
		"password1",
		"$argon2id$broken",
		"$pbkdf2-sha256$abc$salt$sum",
		"$pbkdf2-sha256$1000$!!!$sum",
		"$pbkdf2-sha256$1000$c2FsdA",
	} {
		assert.False(t, h.Verify("password1", hashed), "hash %q", hashed)
	}
}

func TestVerifyLegacyPBKDF2(t *testing.T) {
	h := New(fastParams)

	legacy := encodePBKDF2("password1", []byte("0123456789abcdef"), 1000)

	assert.True(t, h.Verify("password1", legacy))
	assert.False(t, h.Verify("password2", legacy))
	assert.True(t, h.NeedsRehash(legacy))
}
