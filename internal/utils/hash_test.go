package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash_MatchesDirectHMAC(t *testing.T) {
	InitHasherPool("secret-key")

	data := []byte("a batch of records")
	want := hmac.New(sha256.New, []byte("secret-key"))
	want.Write(data)

	got := Hash(data)
	assert.Equal(t, want.Sum(nil), got)
}

func TestHash_PooledHasherIsReset(t *testing.T) {
	InitHasherPool("secret-key")

	first := Hash([]byte("first"))
	second := Hash([]byte("first"))
	require.Equal(t, first, second, "pooled hasher must produce stable digests")

	other := Hash([]byte("second"))
	assert.NotEqual(t, first, other)
}

func TestHashString_DifferentKeysDiffer(t *testing.T) {
	a := HashString("payload", "key-a")
	b := HashString("payload", "key-b")

	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, b)
}

func TestHashEqual(t *testing.T) {
	InitHasherPool("secret-key")
	digest := Hash([]byte("payload"))

	assert.True(t, HashEqual(digest, Hash([]byte("payload"))))
	assert.False(t, HashEqual(digest, Hash([]byte("tampered"))))
}
