package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"sync"
)

// hasherPool is a package-level pool of reusable HMAC-SHA256 hash
// instances. Must be initialized via InitHasherPool before use.
var hasherPool sync.Pool

// InitHasherPool initializes a sync.Pool of HMAC-SHA256 hashers, each keyed
// with hashKey. Pooling avoids reallocating hash.Hash instances on every
// record batch.
func InitHasherPool(hashKey string) {
	hasherPool = sync.Pool{
		New: func() any {
			return hmac.New(sha256.New, []byte(hashKey))
		},
	}
}

// Hash computes an HMAC-SHA256 digest over data using a hasher pulled from
// the pool. InitHasherPool must have been called first.
func Hash(data []byte) []byte {
	h := hasherPool.Get().(hash.Hash)
	h.Reset()

	h.Write(data)
	sum := h.Sum(nil)

	h.Reset()
	hasherPool.Put(h)

	return sum
}

// HashString computes an HMAC-SHA256 digest over data with the given key
// and returns it hex-encoded. Unlike Hash it does not touch the pool, so it
// is suitable for one-off hashing with ad-hoc keys.
func HashString(data string, hashKey string) string {
	hasher := hmac.New(sha256.New, []byte(hashKey))
	hasher.Write([]byte(data))
	return hex.EncodeToString(hasher.Sum(nil))
}

// HashEqual compares two digests in constant time.
func HashEqual(a, b []byte) bool {
	return hmac.Equal(a, b)
}
