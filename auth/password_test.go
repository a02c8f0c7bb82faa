package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	h := NewHasher()

	digest, err := h.Hash("SecurePass123!")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(digest, "$2"), "new digests use bcrypt")

	assert.True(t, h.Verify("SecurePass123!", digest))
	assert.False(t, h.Verify("wrong-password", digest))
}

func TestHashEmptyPassword(t *testing.T) {
	h := NewHasher()
	_, err := h.Hash("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestHashSaltsPerCall(t *testing.T) {
	h := NewHasher()
	a, err := h.Hash("same-password")
	require.NoError(t, err)
	b, err := h.Hash("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyLegacyDigest(t *testing.T) {
	h := NewHasher()

	legacy := legacyDigest("old-password", []byte{0x01, 0x02, 0x03, 0x04})
	assert.True(t, h.Verify("old-password", legacy), "pre-migration digests still verify")
	assert.False(t, h.Verify("wrong", legacy))
}

func TestVerifyMalformedDigests(t *testing.T) {
	h := NewHasher()

	for _, digest := range []string{
		"",
		"plaintext",
		"sha256$not-hex$zz",
		"sha256$deadbeef", // missing digest part
	} {
		assert.False(t, h.Verify("anything", digest), "digest %q", digest)
	}
}
