package cryptox

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSHA256Hasher_KnownVector(t *testing.T) {
	h := SHA256Hasher{}

	got, err := h.Hash([]byte("password"))
	require.NoError(t, err)
	assert.Equal(t, "XohImNooBHFR0OVvjcYpJ3NgPQ1qq73WKhHvch0VQtg=", got)

	assert.True(t, h.Verify([]byte("password"), got))
	assert.False(t, h.Verify([]byte("Password"), got))
}

func TestChecksumHasher(t *testing.T) {
	h := ChecksumHasher{}

	got, err := h.Hash([]byte("abc"))
	require.NoError(t, err)
	// 'a'*31^2 + 'b'*31 + 'c'
	assert.Equal(t, "96354", got)

	empty, err := h.Hash(nil)
	require.NoError(t, err)
	assert.Equal(t, "0", empty)

	// wraps like a signed 32-bit integer
	long, err := h.Hash([]byte(strings.Repeat("z", 40)))
	require.NoError(t, err)
	n, err := strconv.ParseInt(long, 10, 32)
	require.NoError(t, err)
	assert.NotZero(t, n)
	assert.True(t, h.Verify([]byte(strings.Repeat("z", 40)), long))
}

func TestArgon2Hasher_SaltedRoundTrip(t *testing.T) {
	h := Argon2Hasher{}

	a, err := h.Hash([]byte("s3cret"))
	require.NoError(t, err)
	b, err := h.Hash([]byte("s3cret"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "salt must differ")
	assert.True(t, strings.HasPrefix(a, "argon2id$"))
	assert.True(t, h.Verify([]byte("s3cret"), a))
	assert.True(t, h.Verify([]byte("s3cret"), b))
	assert.False(t, h.Verify([]byte("wrong"), a))
	assert.False(t, h.Verify([]byte("s3cret"), "argon2id$%%%$abc"))
	assert.False(t, h.Verify([]byte("s3cret"), "plain"))
}

func TestNewPasswordHasher(t *testing.T) {
	for scheme, want := range map[string]PasswordHasher{
		"":         SHA256Hasher{},
		"SHA256":   SHA256Hasher{},
		"checksum": ChecksumHasher{},
		"argon2id": Argon2Hasher{},
	} {
		got, err := NewPasswordHasher(scheme)
		require.NoError(t, err, scheme)
		assert.IsType(t, want, got, scheme)
	}

	_, err := NewPasswordHasher("md5")
	require.ErrorIs(t, err, ErrUnknownScheme)
}

func TestNewLocalToken(t *testing.T) {
	a, err := NewLocalToken("u1")
	require.NoError(t, err)
	b, err := NewLocalToken("u1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "local.u1."))

	id, ok := ParseLocalToken(a)
	require.True(t, ok)
	assert.Equal(t, "u1", id)
}

func TestParseLocalToken_RejectsOtherShapes(t *testing.T) {
	for _, tok := range []string{
		"",
		"local.u1",
		"remote.u1.00112233445566778899aabbccddeeff",
		"local..00112233445566778899aabbccddeeff",
		"local.u1.short",
		"a.b.c.d",
	} {
		_, ok := ParseLocalToken(tok)
		assert.False(t, ok, tok)
	}
}
